package service

import (
	"context"

	"comichub/internal/cache"
	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

// CatalogService answers the read-only browsing queries: filtered listings,
// single-comic detail, chapter page lists.
type CatalogService interface {
	List(ctx context.Context, f repository.CatalogFilter) ([]repository.ComicSummary, int64, error)
	GetComic(ctx context.Context, id int64, withPages bool) (*dto.ComicDetailResponse, error)
	GetChapterPages(ctx context.Context, chapterID int64) (*dto.ChapterResponse, error)
	ListRecommended(ctx context.Context) ([]models.Comic, error)
	ListNewest(ctx context.Context) ([]models.Comic, error)
}

type catalogService struct {
	comics    *repository.ComicRepo
	hierarchy repository.HierarchyRepository
	ratings   repository.RatingRepository
	cache     *cache.Cache
}

func NewCatalogService(
	comics *repository.ComicRepo,
	hierarchy repository.HierarchyRepository,
	ratings repository.RatingRepository,
	c *cache.Cache,
) CatalogService {
	return &catalogService{comics: comics, hierarchy: hierarchy, ratings: ratings, cache: c}
}

func (s *catalogService) List(ctx context.Context, f repository.CatalogFilter) ([]repository.ComicSummary, int64, error) {
	return s.comics.List(ctx, f)
}

func (s *catalogService) GetComic(ctx context.Context, id int64, withPages bool) (*dto.ComicDetailResponse, error) {
	// Only the lightweight variant is cached; page-bearing payloads are
	// large and rarely re-read.
	cacheable := !withPages
	if cacheable {
		var cached dto.ComicDetailResponse
		if s.cache.GetJSON(ctx, cache.ComicDetailKey(id), &cached) {
			return &cached, nil
		}
	}

	comic, err := s.comics.GetByID(ctx, id, withPages)
	if err != nil {
		return nil, notFoundOr(err, "comic")
	}

	avg, err := s.ratings.CalculateAverageRating(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.ratings.CountRatings(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.FromComicToDetail(comic, avg, count)
	if cacheable {
		s.cache.SetJSON(ctx, cache.ComicDetailKey(id), resp)
	}
	return &resp, nil
}

func (s *catalogService) GetChapterPages(ctx context.Context, chapterID int64) (*dto.ChapterResponse, error) {
	chapter, err := s.hierarchy.GetChapterWithPages(ctx, chapterID)
	if err != nil {
		return nil, notFoundOr(err, "chapter")
	}
	resp := dto.FromChapterToResponse(*chapter)
	if resp.Pages == nil {
		resp.Pages = []dto.PageResponse{}
	}
	return &resp, nil
}

func (s *catalogService) ListRecommended(ctx context.Context) ([]models.Comic, error) {
	return s.comics.ListRecommended(ctx)
}

func (s *catalogService) ListNewest(ctx context.Context) ([]models.Comic, error) {
	return s.comics.ListNewest(ctx, 5)
}
