package service

import (
	"context"

	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

type CommentService interface {
	Create(ctx context.Context, userID, comicID int64, body string) (*dto.CommentResponse, error)
	ListByComic(ctx context.Context, comicID int64) ([]dto.CommentResponse, error)
}

type commentService struct {
	comments  repository.CommentRepository
	hierarchy repository.HierarchyRepository
	users     repository.UserRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	hierarchy repository.HierarchyRepository,
	users repository.UserRepository,
) CommentService {
	return &commentService{comments: comments, hierarchy: hierarchy, users: users}
}

func (s *commentService) Create(ctx context.Context, userID, comicID int64, body string) (*dto.CommentResponse, error) {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return nil, notFoundOr(err, "comic")
	}

	comment := &models.Comment{UserID: userID, ComicID: comicID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err == nil {
		comment.User = user
	}
	resp := dto.FromCommentToResponse(*comment)
	return &resp, nil
}

func (s *commentService) ListByComic(ctx context.Context, comicID int64) ([]dto.CommentResponse, error) {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return nil, notFoundOr(err, "comic")
	}
	list, err := s.comments.ListByComic(ctx, comicID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CommentResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, dto.FromCommentToResponse(c))
	}
	return resp, nil
}
