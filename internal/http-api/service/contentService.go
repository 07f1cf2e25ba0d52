package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"comichub/internal/apperr"
	"comichub/internal/assets"
	"comichub/internal/cache"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

// Principal is the authenticated identity performing a request, as handed
// over by the authentication collaborator. The core never sees credentials.
type Principal struct {
	ID     int64
	Email  string
	Nick   string
	RoleID int64
}

const adminRoleID = 1

func (p Principal) isAdmin() bool { return p.RoleID == adminRoleID }

type CreateComicInput struct {
	Title       string
	Description *string
	PosterName  string
	Poster      io.Reader
}

type PageUpload struct {
	Name string
	Data io.Reader
}

// ContentService is the content hierarchy store: it owns the paired
// database + asset-tree mutations and their ordering. Asset failures abort
// an operation before the relational write; best-effort cleanup failures are
// swallowed.
type ContentService interface {
	CreateComic(ctx context.Context, principal Principal, in CreateComicInput) (*models.Comic, error)
	CreateVolume(ctx context.Context, principal Principal, comicID int64) (*models.Volume, error)
	CreateChapter(ctx context.Context, principal Principal, volumeID int64, title *string) (*models.Chapter, error)
	UploadPages(ctx context.Context, principal Principal, chapterID int64, files []PageUpload) ([]int, error)
	DeleteComic(ctx context.Context, principal Principal, comicID int64) error
	DeleteVolume(ctx context.Context, principal Principal, volumeID int64) error
	DeleteChapter(ctx context.Context, principal Principal, chapterID int64) error
	DeletePage(ctx context.Context, principal Principal, pageID int64) error
}

type contentService struct {
	comics    *repository.ComicRepo
	hierarchy repository.HierarchyRepository
	tree      *assets.Tree
	cache     *cache.Cache
	logger    *slog.Logger
}

func NewContentService(
	comics *repository.ComicRepo,
	hierarchy repository.HierarchyRepository,
	tree *assets.Tree,
	c *cache.Cache,
	logger *slog.Logger,
) ContentService {
	return &contentService{comics: comics, hierarchy: hierarchy, tree: tree, cache: c, logger: logger}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

// mustOwn enforces that only the comic owner or an admin mutates content
// under it.
func mustOwn(principal Principal, comic *models.Comic) error {
	if comic.UserID != principal.ID && !principal.isAdmin() {
		return apperr.Authorization("not the owner of this comic")
	}
	return nil
}

func (s *contentService) CreateComic(ctx context.Context, principal Principal, in CreateComicInput) (*models.Comic, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 255 {
		return nil, apperr.Validation("title must be between 1 and 255 characters")
	}
	safe, err := assets.SanitizeTitle(title)
	if err != nil {
		return nil, err
	}

	// Fast-path duplicate check. The unique constraint on comics.title is
	// the authoritative guard against concurrent identical creates.
	exists, err := s.comics.TitleExists(ctx, title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("a comic with this title already exists")
	}

	ext := strings.ToLower(filepath.Ext(in.PosterName))
	if ext == "" {
		ext = ".jpg"
	}

	if err := s.tree.EnsureDir(s.tree.PosterDir(safe)); err != nil {
		return nil, err
	}
	if err := s.tree.EnsureDir(s.tree.ContentDir(safe)); err != nil {
		return nil, err
	}

	// The record is inserted only after the poster is on disk, so a failed
	// write never leaves an orphan record. The reverse residue (directories
	// without a record) is accepted.
	posterPath := s.tree.PosterPath(safe, ext)
	if err := s.tree.WriteFile(posterPath, in.Poster); err != nil {
		return nil, err
	}

	comic := &models.Comic{
		Title:       title,
		Description: in.Description,
		Image:       s.tree.Rel(posterPath),
		ReleaseDate: time.Now(),
		Recommended: false,
		UserID:      principal.ID,
	}
	if err := s.comics.Create(ctx, comic); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a comic with this title already exists")
		}
		return nil, err
	}

	s.logger.Info("comic created", "comic_id", comic.ID, "title", title, "owner", principal.ID)
	return comic, nil
}

func (s *contentService) CreateVolume(ctx context.Context, principal Principal, comicID int64) (*models.Volume, error) {
	comic, err := s.hierarchy.GetComic(ctx, comicID)
	if err != nil {
		return nil, notFoundOr(err, "comic")
	}
	if err := mustOwn(principal, comic); err != nil {
		return nil, err
	}

	count, err := s.hierarchy.CountVolumes(ctx, comicID)
	if err != nil {
		return nil, err
	}
	number := int(count) + 1

	safe, err := assets.SanitizeTitle(comic.Title)
	if err != nil {
		return nil, err
	}
	if err := s.tree.EnsureDir(s.tree.VolumeDir(safe, number)); err != nil {
		return nil, err
	}

	volume := &models.Volume{Number: number, ComicID: comicID}
	if err := s.hierarchy.CreateVolume(ctx, volume); err != nil {
		return nil, err
	}
	s.invalidateComic(ctx, comicID)
	return volume, nil
}

func (s *contentService) CreateChapter(ctx context.Context, principal Principal, volumeID int64, title *string) (*models.Chapter, error) {
	volume, err := s.hierarchy.GetVolume(ctx, volumeID)
	if err != nil {
		return nil, notFoundOr(err, "volume")
	}
	if err := mustOwn(principal, volume.Comic); err != nil {
		return nil, err
	}

	count, err := s.hierarchy.CountChapters(ctx, volumeID)
	if err != nil {
		return nil, err
	}
	number := int(count) + 1

	safe, err := assets.SanitizeTitle(volume.Comic.Title)
	if err != nil {
		return nil, err
	}
	if err := s.tree.EnsureDir(s.tree.ChapterDir(safe, volume.Number, number)); err != nil {
		return nil, err
	}

	chapter := &models.Chapter{Number: number, Title: title, VolumeID: volumeID}
	if err := s.hierarchy.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}
	s.invalidateComic(ctx, volume.ComicID)
	return chapter, nil
}

// UploadPages appends files to a chapter. Numbering continues from the
// highest existing page number, so numbers freed by deletes never collide
// with survivors.
func (s *contentService) UploadPages(ctx context.Context, principal Principal, chapterID int64, files []PageUpload) ([]int, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("no files in upload")
	}

	chapter, err := s.hierarchy.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, notFoundOr(err, "chapter")
	}
	if err := mustOwn(principal, chapter.Volume.Comic); err != nil {
		return nil, err
	}

	maxNumber, err := s.hierarchy.MaxPageNumber(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	safe, err := assets.SanitizeTitle(chapter.Volume.Comic.Title)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(files))
	pages := make([]models.Page, 0, len(files))
	for i, f := range files {
		number := maxNumber + 1 + i
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext == "" {
			ext = ".jpg"
		}
		path := s.tree.PagePath(safe, chapter.Volume.Number, chapter.Number, number, ext)
		if err := s.tree.WriteFile(path, f.Data); err != nil {
			// Abort before any record is written; files already on disk
			// stay as tolerated residue.
			return nil, err
		}
		numbers = append(numbers, number)
		pages = append(pages, models.Page{
			Number:    number,
			Image:     s.tree.Rel(path),
			ChapterID: chapterID,
		})
	}

	if err := s.hierarchy.CreatePages(ctx, pages); err != nil {
		return nil, err
	}

	s.invalidateComic(ctx, chapter.Volume.ComicID)
	return numbers, nil
}

func (s *contentService) DeleteComic(ctx context.Context, principal Principal, comicID int64) error {
	comic, err := s.hierarchy.GetComic(ctx, comicID)
	if err != nil {
		return notFoundOr(err, "comic")
	}
	if err := mustOwn(principal, comic); err != nil {
		return err
	}

	safe, err := assets.SanitizeTitle(comic.Title)
	if err != nil {
		return err
	}
	// Assets first, records second.
	if err := s.tree.RemoveSubtree(s.tree.ComicDir(safe)); err != nil {
		return err
	}
	if err := s.hierarchy.DeleteComicTree(ctx, comicID); err != nil {
		return err
	}
	s.invalidateComic(ctx, comicID)
	return nil
}

func (s *contentService) DeleteVolume(ctx context.Context, principal Principal, volumeID int64) error {
	volume, err := s.hierarchy.GetVolume(ctx, volumeID)
	if err != nil {
		return notFoundOr(err, "volume")
	}
	if err := mustOwn(principal, volume.Comic); err != nil {
		return err
	}

	safe, err := assets.SanitizeTitle(volume.Comic.Title)
	if err != nil {
		return err
	}
	if err := s.tree.RemoveSubtree(s.tree.VolumeDir(safe, volume.Number)); err != nil {
		return err
	}
	if err := s.hierarchy.DeleteVolumeTree(ctx, volumeID); err != nil {
		return err
	}
	s.invalidateComic(ctx, volume.ComicID)
	return nil
}

func (s *contentService) DeleteChapter(ctx context.Context, principal Principal, chapterID int64) error {
	chapter, err := s.hierarchy.GetChapter(ctx, chapterID)
	if err != nil {
		return notFoundOr(err, "chapter")
	}
	if err := mustOwn(principal, chapter.Volume.Comic); err != nil {
		return err
	}

	safe, err := assets.SanitizeTitle(chapter.Volume.Comic.Title)
	if err != nil {
		return err
	}
	if err := s.tree.RemoveSubtree(s.tree.ChapterDir(safe, chapter.Volume.Number, chapter.Number)); err != nil {
		return err
	}
	if err := s.hierarchy.DeleteChapterTree(ctx, chapterID); err != nil {
		return err
	}
	s.invalidateComic(ctx, chapter.Volume.ComicID)
	return nil
}

func (s *contentService) DeletePage(ctx context.Context, principal Principal, pageID int64) error {
	page, err := s.hierarchy.GetPage(ctx, pageID)
	if err != nil {
		return notFoundOr(err, "page")
	}
	if err := mustOwn(principal, page.Chapter.Volume.Comic); err != nil {
		return err
	}

	if err := s.tree.RemoveSubtree(s.tree.Abs(page.Image)); err != nil {
		return err
	}
	if err := s.hierarchy.DeletePage(ctx, pageID); err != nil {
		return err
	}

	// Prune the chapter folder if this was its last page. Failures here are
	// never surfaced.
	if safe, err := assets.SanitizeTitle(page.Chapter.Volume.Comic.Title); err == nil {
		s.tree.RemoveIfEmpty(s.tree.ChapterDir(safe, page.Chapter.Volume.Number, page.Chapter.Number))
	}

	s.invalidateComic(ctx, page.Chapter.Volume.ComicID)
	return nil
}

func (s *contentService) invalidateComic(ctx context.Context, comicID int64) {
	s.cache.Delete(ctx, cache.ComicDetailKey(comicID))
}
