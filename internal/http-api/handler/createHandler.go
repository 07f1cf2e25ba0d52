package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/service"
)

// CreateHandler serves the content-authoring surface under /create. Every
// route requires an authenticated principal; ownership checks live in the
// content service.
type CreateHandler struct {
	content service.ContentService
}

func NewCreateHandler(content service.ContentService) *CreateHandler {
	return &CreateHandler{content: content}
}

func (h *CreateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/comics/", h.CreateComic)
	rg.POST("/comics/:comic_id/volumes", h.CreateVolume)
	rg.POST("/volumes/:volume_id/chapters", h.CreateChapter)
	rg.POST("/chapters/:chapter_id/pages", h.UploadPages)

	rg.DELETE("/comics/:comic_id", h.DeleteComic)
	rg.DELETE("/volumes/:volume_id", h.DeleteVolume)
	rg.DELETE("/chapters/:chapter_id", h.DeleteChapter)
	rg.DELETE("/pages/:page_id", h.DeletePage)
}

func (h *CreateHandler) CreateComic(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	var description *string
	if desc := c.PostForm("desc"); desc != "" {
		description = &desc
	}

	posterHeader, err := c.FormFile("poster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poster file is required"})
		return
	}
	poster, err := posterHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read poster file"})
		return
	}
	defer poster.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	comic, err := h.content.CreateComic(ctx, principal, service.CreateComicInput{
		Title:       title,
		Description: description,
		PosterName:  posterHeader.Filename,
		Poster:      poster,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateComicStub{ID: comic.ID, Title: comic.Title})
}

func (h *CreateHandler) CreateVolume(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	comicID, err := strconv.ParseInt(c.Param("comic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	volume, err := h.content.CreateVolume(ctx, principal, comicID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.VolumeCreatedResponse{ID: volume.ID, Number: volume.Number})
}

func (h *CreateHandler) CreateChapter(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	volumeID, err := strconv.ParseInt(c.Param("volume_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	// The chapter title is optional and so is the request body itself.
	var in dto.CreateChapterDTO
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	chapter, err := h.content.CreateChapter(ctx, principal, volumeID, in.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ChapterCreatedResponse{
		ID:     chapter.ID,
		Number: chapter.Number,
		Title:  chapter.Title,
	})
}

func (h *CreateHandler) UploadPages(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	chapterID, err := strconv.ParseInt(c.Param("chapter_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed multipart form"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in upload"})
		return
	}

	files := make([]service.PageUpload, 0, len(fileHeaders))
	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		opened = append(opened, f)
		files = append(files, service.PageUpload{Name: fh.Filename, Data: f})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	numbers, err := h.content.UploadPages(ctx, principal, chapterID, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PagesUploadedResponse{PageNumbers: numbers})
}

func (h *CreateHandler) DeleteComic(c *gin.Context) {
	h.deleteOp(c, "comic_id", h.content.DeleteComic)
}

func (h *CreateHandler) DeleteVolume(c *gin.Context) {
	h.deleteOp(c, "volume_id", h.content.DeleteVolume)
}

func (h *CreateHandler) DeleteChapter(c *gin.Context) {
	h.deleteOp(c, "chapter_id", h.content.DeleteChapter)
}

func (h *CreateHandler) DeletePage(c *gin.Context) {
	h.deleteOp(c, "page_id", h.content.DeletePage)
}

func (h *CreateHandler) deleteOp(c *gin.Context, param string, op func(ctx context.Context, principal service.Principal, id int64) error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := op(ctx, principal, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
