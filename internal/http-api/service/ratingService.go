package service

import (
	"context"

	"comichub/internal/apperr"
	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

type RatingService interface {
	Rate(ctx context.Context, userID, comicID int64, value int) (*dto.RatingResponse, error)
	GetComicAverageRating(ctx context.Context, comicID int64) (*float64, int64, error)
}

type ratingService struct {
	ratings   repository.RatingRepository
	hierarchy repository.HierarchyRepository
}

func NewRatingService(ratings repository.RatingRepository, hierarchy repository.HierarchyRepository) RatingService {
	return &ratingService{ratings: ratings, hierarchy: hierarchy}
}

// Rate records the user's rating for a comic, replacing any earlier value
// for the same pair. The value domain is [0,10].
func (s *ratingService) Rate(ctx context.Context, userID, comicID int64, value int) (*dto.RatingResponse, error) {
	if value < 0 || value > 10 {
		return nil, apperr.Validation("rating value must be between 0 and 10")
	}

	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return nil, notFoundOr(err, "comic")
	}

	rating := &models.Rating{UserID: userID, ComicID: comicID, Value: value}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	// Reload so the response carries the surviving row, not the insert
	// attempt.
	stored, err := s.ratings.GetByUserAndComic(ctx, userID, comicID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromRatingToResponse(stored)
	return &resp, nil
}

func (s *ratingService) GetComicAverageRating(ctx context.Context, comicID int64) (*float64, int64, error) {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return nil, 0, notFoundOr(err, "comic")
	}
	avg, err := s.ratings.CalculateAverageRating(ctx, comicID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.ratings.CountRatings(ctx, comicID)
	if err != nil {
		return nil, 0, err
	}
	return avg, count, nil
}
