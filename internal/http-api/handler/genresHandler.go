package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/service"
)

type GenresHandler struct {
	genres service.GenreService
}

func NewGenresHandler(genres service.GenreService) *GenresHandler {
	return &GenresHandler{genres: genres}
}

func (h *GenresHandler) RegisterRoutes(rg *gin.RouterGroup, adminOnly ...gin.HandlerFunc) {
	rg.GET("/", h.List)
	rg.POST("/", append(adminOnly, h.Create)...)
	rg.POST("/comics/:comic_id", append(adminOnly, h.AssignToComic)...)
}

func (h *GenresHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.genres.GetAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *GenresHandler) Create(c *gin.Context) {
	var in dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	genre, err := h.genres.Create(ctx, in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

func (h *GenresHandler) AssignToComic(c *gin.Context) {
	comicID, err := strconv.ParseInt(c.Param("comic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var in struct {
		GenreIDs []int64 `json:"genre_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.genres.AssignToComic(ctx, comicID, in.GenreIDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
