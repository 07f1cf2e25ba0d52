package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comichub/internal/http-api/models"
)

type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	GetByUserAndComic(ctx context.Context, userID, comicID int64) (*models.Rating, error)
	CalculateAverageRating(ctx context.Context, comicID int64) (*float64, error)
	CountRatings(ctx context.Context, comicID int64) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert inserts the rating or, when the (user, comic) pair already has one,
// replaces its value in place. The composite unique index is the conflict
// target, so two concurrent raters can never produce a second row.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "comic_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":    rating.Value,
				"rated_at": time.Now(),
			}),
		}).
		Create(rating).Error
}

func (r *ratingRepository) GetByUserAndComic(ctx context.Context, userID, comicID int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comic_id = ?", userID, comicID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// CalculateAverageRating returns the arithmetic mean of the comic's rating
// values, nil when the comic has no ratings.
func (r *ratingRepository) CalculateAverageRating(ctx context.Context, comicID int64) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(value)").
		Where("comic_id = ?", comicID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *ratingRepository) CountRatings(ctx context.Context, comicID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("comic_id = ?", comicID).
		Count(&count).Error
	return count, err
}
