package dto

import (
	"time"

	"comichub/internal/http-api/models"
)

type CreateCommentDTO struct {
	Comment string `json:"comment" binding:"required,max=255"`
}

type CommentResponse struct {
	ID        int64         `json:"id"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

func FromCommentToResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Comment:   c.Body,
		CreatedAt: c.CreatedAt,
		User:      FromUserToResponse(c.User),
	}
}
