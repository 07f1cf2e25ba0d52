package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"comichub/internal/http-api/models"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByComic(ctx context.Context, comicID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByComic(ctx context.Context, comicID int64) ([]models.Comment, error) {
	var list []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("comic_id = ?", comicID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}
