package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comichub/internal/http-api/models"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, comicID int64) error
	Remove(ctx context.Context, userID, comicID int64) error
	Exists(ctx context.Context, userID, comicID int64) (bool, error)
	ListByNick(ctx context.Context, nick string) ([]models.Comic, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add is insert-or-ignore: favoriting an already favorited comic is a no-op,
// not an error.
func (r *favoriteRepository) Add(ctx context.Context, userID, comicID int64) error {
	fav := &models.Favorite{UserID: userID, ComicID: comicID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error; err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove is delete-if-present: removing an absent favorite is a no-op.
func (r *favoriteRepository) Remove(ctx context.Context, userID, comicID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND comic_id = ?", userID, comicID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("remove favorite: %w", result.Error)
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, comicID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND comic_id = ?", userID, comicID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByNick returns the favorite comics of the named user, sorted
// case-insensitively by title.
func (r *favoriteRepository) ListByNick(ctx context.Context, nick string) ([]models.Comic, error) {
	var list []models.Comic
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN favorites ON favorites.comic_id = comics.id").
		Joins("INNER JOIN users ON users.id = favorites.user_id").
		Where("users.nick = ?", nick).
		Order("LOWER(comics.title) ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return list, nil
}
