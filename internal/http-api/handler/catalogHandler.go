package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/repository"
	"comichub/internal/http-api/service"
)

// CatalogHandler serves the browsing side: listings, detail, chapter pages,
// and the per-user favorite toggles.
type CatalogHandler struct {
	catalog   service.CatalogService
	favorites service.FavoriteService
}

func NewCatalogHandler(catalog service.CatalogService, favorites service.FavoriteService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, favorites: favorites}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("/comics", h.List)
	rg.GET("/comics/:comic_id", h.Get)
	rg.GET("/chapters/:chapter_id", h.ChapterPages)
	rg.GET("/recomm", h.Recommended)
	rg.GET("/new_5", h.NewestFive)

	rg.POST("/:comic_id/favorite", authRequired, h.AddFavorite)
	rg.DELETE("/:comic_id/del_favorite", authRequired, h.RemoveFavorite)
	rg.GET("/:comic_id/is_favorite", authRequired, h.IsFavorite)
}

// List handles GET /comic/comics with the filter/sort/paginate parameters.
func (h *CatalogHandler) List(c *gin.Context) {
	var f repository.CatalogFilter

	if genresStr := strings.TrimSpace(c.Query("genres")); genresStr != "" {
		for _, part := range strings.Split(genresStr, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid genres parameter"})
				return
			}
			f.GenreIDs = append(f.GenreIDs, id)
		}
	}

	if minRatingStr := strings.TrimSpace(c.Query("min_rating")); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil || minRating < 0 || minRating > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_rating parameter, must be between 0 and 10"})
			return
		}
		f.MinRating = &minRating
	}

	f.Title = strings.TrimSpace(c.Query("title"))

	switch sort := strings.TrimSpace(c.Query("sort")); sort {
	case "", "rating":
		f.Sort = repository.SortByRating
	case "title":
		f.Sort = repository.SortByTitle
	case "popularity":
		f.Sort = repository.SortByPopularity
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort, must be one of: title, rating, popularity"})
		return
	}

	f.Page = 1
	if pageStr := strings.TrimSpace(c.Query("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			f.Page = page
		}
	}

	f.Limit = repository.DefaultPageSize
	if limitStr := strings.TrimSpace(c.Query("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 1 && limit <= repository.MaxPageSize {
			f.Limit = limit
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	list, total, err := h.catalog.List(ctx, f)
	if err != nil {
		respondError(c, err)
		return
	}

	totalPages := (total + int64(f.Limit) - 1) / int64(f.Limit)
	c.JSON(http.StatusOK, gin.H{
		"data": list,
		"pagination": gin.H{
			"page":        f.Page,
			"limit":       f.Limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("comic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	withPages := c.Query("pages") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.catalog.GetComic(ctx, id, withPages)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CatalogHandler) ChapterPages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("chapter_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chapter, err := h.catalog.GetChapterPages(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (h *CatalogHandler) Recommended(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.catalog.ListRecommended(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) NewestFive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.catalog.ListNewest(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) AddFavorite(c *gin.Context) {
	h.favoriteOp(c, h.favorites.Add)
}

func (h *CatalogHandler) RemoveFavorite(c *gin.Context) {
	h.favoriteOp(c, h.favorites.Remove)
}

func (h *CatalogHandler) favoriteOp(c *gin.Context, op func(ctx context.Context, userID, comicID int64) error) {
	comicID, err := strconv.ParseInt(c.Param("comic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, principal.ID, comicID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) IsFavorite(c *gin.Context) {
	comicID, err := strconv.ParseInt(c.Param("comic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	isFavorite, err := h.favorites.IsFavorite(ctx, principal.ID, comicID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": isFavorite})
}
