package dto

import (
	"time"

	"comichub/internal/http-api/models"
)

// RateDTO uses a pointer so that a zero rating still binds.
type RateDTO struct {
	Value *int `json:"value" binding:"required"`
}

type RatingResponse struct {
	ID      int64     `json:"id"`
	Value   int       `json:"value"`
	RatedAt time.Time `json:"rated_at"`
}

func FromRatingToResponse(r *models.Rating) RatingResponse {
	return RatingResponse{ID: r.ID, Value: r.Value, RatedAt: r.RatedAt}
}
