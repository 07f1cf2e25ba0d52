package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

// FavoriteService is the per-user favorites ledger. Add and remove are both
// idempotent, so retrying either is always safe.
type FavoriteService interface {
	Add(ctx context.Context, userID, comicID int64) error
	Remove(ctx context.Context, userID, comicID int64) error
	IsFavorite(ctx context.Context, userID, comicID int64) (bool, error)
	ListByNick(ctx context.Context, nick string) ([]models.Comic, error)
}

type favoriteService struct {
	favorites repository.FavoriteRepository
	hierarchy repository.HierarchyRepository
	users     repository.UserRepository
}

func NewFavoriteService(
	favorites repository.FavoriteRepository,
	hierarchy repository.HierarchyRepository,
	users repository.UserRepository,
) FavoriteService {
	return &favoriteService{favorites: favorites, hierarchy: hierarchy, users: users}
}

func (s *favoriteService) Add(ctx context.Context, userID, comicID int64) error {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return notFoundOr(err, "comic")
	}
	return s.favorites.Add(ctx, userID, comicID)
}

func (s *favoriteService) Remove(ctx context.Context, userID, comicID int64) error {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return notFoundOr(err, "comic")
	}
	return s.favorites.Remove(ctx, userID, comicID)
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, comicID int64) (bool, error) {
	return s.favorites.Exists(ctx, userID, comicID)
}

func (s *favoriteService) ListByNick(ctx context.Context, nick string) ([]models.Comic, error) {
	if _, err := s.users.GetByNick(ctx, nick); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundOr(err, "user")
		}
		return nil, err
	}
	return s.favorites.ListByNick(ctx, nick)
}
