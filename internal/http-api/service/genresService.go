package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"comichub/internal/apperr"
	"comichub/internal/cache"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

type GenreService interface {
	GetAll(ctx context.Context) ([]models.Genre, error)
	Create(ctx context.Context, name string) (*models.Genre, error)
	AssignToComic(ctx context.Context, comicID int64, genreIDs []int64) error
}

type genreService struct {
	genres    repository.GenreRepository
	comics    *repository.ComicRepo
	hierarchy repository.HierarchyRepository
	cache     *cache.Cache
}

func NewGenreService(
	genres repository.GenreRepository,
	comics *repository.ComicRepo,
	hierarchy repository.HierarchyRepository,
	c *cache.Cache,
) GenreService {
	return &genreService{genres: genres, comics: comics, hierarchy: hierarchy, cache: c}
}

func (s *genreService) GetAll(ctx context.Context) ([]models.Genre, error) {
	var cached []models.Genre
	if s.cache.GetJSON(ctx, cache.GenresKey, &cached) {
		return cached, nil
	}
	list, err := s.genres.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, cache.GenresKey, list)
	return list, nil
}

func (s *genreService) Create(ctx context.Context, name string) (*models.Genre, error) {
	g := &models.Genre{Name: name}
	if err := s.genres.Create(ctx, g); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("genre %q already exists", name)
		}
		return nil, err
	}
	s.cache.Delete(ctx, cache.GenresKey)
	return g, nil
}

func (s *genreService) AssignToComic(ctx context.Context, comicID int64, genreIDs []int64) error {
	if _, err := s.hierarchy.GetComic(ctx, comicID); err != nil {
		return notFoundOr(err, "comic")
	}
	for _, id := range genreIDs {
		if _, err := s.genres.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "genre")
		}
	}
	if err := s.comics.AddGenresToComic(ctx, comicID, genreIDs); err != nil {
		return err
	}
	s.cache.Delete(ctx, cache.ComicDetailKey(comicID))
	return nil
}
