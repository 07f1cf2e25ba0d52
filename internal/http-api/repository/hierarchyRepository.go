package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"comichub/internal/http-api/models"
)

// HierarchyRepository owns the relational side of the Comic->Volume->
// Chapter->Page tree: numbering lookups, ancestor resolution for asset
// paths, and the explicit recursive deletes. Cascades are spelled out here
// instead of relying on ORM cascade annotations so the caller can order
// filesystem removal against record removal.
type HierarchyRepository interface {
	GetComic(ctx context.Context, id int64) (*models.Comic, error)
	GetVolume(ctx context.Context, id int64) (*models.Volume, error)
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	GetChapterWithPages(ctx context.Context, id int64) (*models.Chapter, error)
	GetPage(ctx context.Context, id int64) (*models.Page, error)

	CountVolumes(ctx context.Context, comicID int64) (int64, error)
	CountChapters(ctx context.Context, volumeID int64) (int64, error)
	MaxPageNumber(ctx context.Context, chapterID int64) (int, error)

	CreateVolume(ctx context.Context, v *models.Volume) error
	CreateChapter(ctx context.Context, c *models.Chapter) error
	CreatePages(ctx context.Context, pages []models.Page) error

	DeletePage(ctx context.Context, id int64) error
	DeleteChapterTree(ctx context.Context, id int64) error
	DeleteVolumeTree(ctx context.Context, id int64) error
	DeleteComicTree(ctx context.Context, id int64) error
}

type hierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepository{db: db}
}

func (r *hierarchyRepository) GetComic(ctx context.Context, id int64) (*models.Comic, error) {
	var c models.Comic
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetVolume resolves the volume together with its comic, which is needed to
// rebuild asset paths.
func (r *hierarchyRepository) GetVolume(ctx context.Context, id int64) (*models.Volume, error) {
	var v models.Volume
	if err := r.db.WithContext(ctx).Preload("Comic").First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *hierarchyRepository) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).Preload("Volume.Comic").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *hierarchyRepository) GetChapterWithPages(ctx context.Context, id int64) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).
		Preload("Volume.Comic").
		Preload("Pages", func(db *gorm.DB) *gorm.DB {
			return db.Order("pages.number ASC")
		}).
		First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *hierarchyRepository) GetPage(ctx context.Context, id int64) (*models.Page, error) {
	var p models.Page
	if err := r.db.WithContext(ctx).Preload("Chapter.Volume.Comic").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *hierarchyRepository) CountVolumes(ctx context.Context, comicID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Volume{}).
		Where("comic_id = ?", comicID).
		Count(&count).Error
	return count, err
}

func (r *hierarchyRepository) CountChapters(ctx context.Context, volumeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("volume_id = ?", volumeID).
		Count(&count).Error
	return count, err
}

// MaxPageNumber returns the highest page number in the chapter, 0 when the
// chapter holds no pages. Uploads continue from here, never from the count,
// so deleted numbers are not reused.
func (r *hierarchyRepository) MaxPageNumber(ctx context.Context, chapterID int64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Page{}).
		Select("COALESCE(MAX(number), 0)").
		Where("chapter_id = ?", chapterID).
		Scan(&max).Error
	return max, err
}

func (r *hierarchyRepository) CreateVolume(ctx context.Context, v *models.Volume) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create volume: %w", err)
	}
	return nil
}

func (r *hierarchyRepository) CreateChapter(ctx context.Context, c *models.Chapter) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create chapter: %w", err)
	}
	return nil
}

func (r *hierarchyRepository) CreatePages(ctx context.Context, pages []models.Page) error {
	if len(pages) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&pages).Error; err != nil {
		return fmt.Errorf("create pages: %w", err)
	}
	return nil
}

func (r *hierarchyRepository) DeletePage(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Page{}, id).Error; err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

func (r *hierarchyRepository) DeleteChapterTree(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", id).Delete(&models.Page{}).Error; err != nil {
			return fmt.Errorf("delete chapter pages: %w", err)
		}
		if err := tx.Delete(&models.Chapter{}, id).Error; err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}
		return nil
	})
}

func (r *hierarchyRepository) DeleteVolumeTree(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapterIDs := tx.Model(&models.Chapter{}).Select("id").Where("volume_id = ?", id)
		if err := tx.Where("chapter_id IN (?)", chapterIDs).Delete(&models.Page{}).Error; err != nil {
			return fmt.Errorf("delete volume pages: %w", err)
		}
		if err := tx.Where("volume_id = ?", id).Delete(&models.Chapter{}).Error; err != nil {
			return fmt.Errorf("delete volume chapters: %w", err)
		}
		if err := tx.Delete(&models.Volume{}, id).Error; err != nil {
			return fmt.Errorf("delete volume: %w", err)
		}
		return nil
	})
}

// DeleteComicTree removes the comic, its owned hierarchy, and the relation
// rows pointing at it (genre links, favorites, ratings, comments). Genres
// and users themselves are non-owned and stay untouched.
func (r *hierarchyRepository) DeleteComicTree(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		volumeIDs := tx.Model(&models.Volume{}).Select("id").Where("comic_id = ?", id)
		chapterIDs := tx.Model(&models.Chapter{}).Select("id").Where("volume_id IN (?)", volumeIDs)
		if err := tx.Where("chapter_id IN (?)", chapterIDs).Delete(&models.Page{}).Error; err != nil {
			return fmt.Errorf("delete comic pages: %w", err)
		}
		if err := tx.Where("volume_id IN (?)", volumeIDs).Delete(&models.Chapter{}).Error; err != nil {
			return fmt.Errorf("delete comic chapters: %w", err)
		}
		if err := tx.Where("comic_id = ?", id).Delete(&models.Volume{}).Error; err != nil {
			return fmt.Errorf("delete comic volumes: %w", err)
		}
		for _, rel := range []any{&models.ComicGenre{}, &models.Favorite{}, &models.Rating{}, &models.Comment{}} {
			if err := tx.Where("comic_id = ?", id).Delete(rel).Error; err != nil {
				return fmt.Errorf("delete comic relations: %w", err)
			}
		}
		if err := tx.Delete(&models.Comic{}, id).Error; err != nil {
			return fmt.Errorf("delete comic: %w", err)
		}
		return nil
	})
}
