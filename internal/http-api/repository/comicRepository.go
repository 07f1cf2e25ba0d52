package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"comichub/internal/http-api/models"
)

type CatalogSort string

const (
	SortByTitle      CatalogSort = "title"
	SortByRating     CatalogSort = "rating"
	SortByPopularity CatalogSort = "popularity"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 30
)

// CatalogFilter is the uniform query shape of the listing endpoint:
// filter -> aggregate -> sort -> paginate.
type CatalogFilter struct {
	GenreIDs  []int64
	MinRating *float64
	Title     string
	Sort      CatalogSort
	Page      int
	Limit     int
}

// ComicSummary is the explicit listing projection. Rating aggregates are
// computed per query and never persisted.
type ComicSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"desc,omitempty"`
	Image         string    `json:"img"`
	ReleaseDate   time.Time `json:"date_of_out"`
	Recommended   bool      `json:"website_recommendation"`
	UserID        int64     `json:"user_id"`
	AverageRating *float64  `json:"average_rating"`
	RatingCount   int64     `json:"rating_count"`
}

type ComicRepo struct {
	db *gorm.DB
}

func NewComicRepo(db *gorm.DB) *ComicRepo {
	return &ComicRepo{db: db}
}

// catalogQuery builds the filtered, aggregated query. Called once for the
// page fetch and once for the total count, so it must stay side-effect free.
func (r *ComicRepo) catalogQuery(ctx context.Context, f CatalogFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Comic{}).
		Select("comics.id, comics.title, comics.description, comics.image, comics.release_date, comics.recommended, comics.user_id, AVG(ratings.value) AS average_rating, COUNT(ratings.id) AS rating_count").
		Joins("LEFT JOIN ratings ON ratings.comic_id = comics.id").
		Group("comics.id")

	if len(f.GenreIDs) > 0 {
		// The distinct subquery keeps one row per comic even when several
		// genres match, so the rating aggregates are not inflated and no
		// duplicate comics reach pagination.
		q = q.Joins(
			"INNER JOIN (SELECT DISTINCT comic_id FROM comic_genres WHERE genre_id IN ?) AS genre_match ON genre_match.comic_id = comics.id",
			f.GenreIDs,
		)
	}

	if title := strings.TrimSpace(f.Title); title != "" {
		q = q.Where("LOWER(comics.title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	if f.MinRating != nil {
		// Post-aggregation predicate: comics without ratings have a NULL
		// average and fall out of the result, as intended.
		q = q.Having("AVG(ratings.value) >= ?", *f.MinRating)
	}

	return q
}

func orderClause(sort CatalogSort) string {
	switch sort {
	case SortByTitle:
		return "comics.title ASC"
	case SortByPopularity:
		return "rating_count DESC, average_rating DESC NULLS LAST, comics.id ASC"
	default: // SortByRating
		return "average_rating DESC NULLS LAST, comics.id ASC"
	}
}

// List answers the catalog listing query and returns the page of summaries
// plus the total number of matching comics.
func (r *ComicRepo) List(ctx context.Context, f CatalogFilter) ([]ComicSummary, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Table("(?) AS filtered", r.catalogQuery(ctx, f)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count catalog: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	var list []ComicSummary
	if err := r.catalogQuery(ctx, f).
		Order(orderClause(f.Sort)).
		Limit(f.Limit).
		Offset(offset).
		Scan(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list catalog: %w", err)
	}

	return list, total, nil
}

// GetByID loads a comic with its genre and owner associations plus the full
// volume/chapter hierarchy. Pages are skipped for the lightweight variant.
func (r *ComicRepo) GetByID(ctx context.Context, id int64, withPages bool) (*models.Comic, error) {
	q := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("User").
		Preload("Volumes", func(db *gorm.DB) *gorm.DB {
			return db.Order("volumes.number ASC")
		}).
		Preload("Volumes.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.number ASC")
		})
	if withPages {
		q = q.Preload("Volumes.Chapters.Pages", func(db *gorm.DB) *gorm.DB {
			return db.Order("pages.number ASC")
		})
	}

	var c models.Comic
	if err := q.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ComicRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comic{}).
		Where("title = ?", title).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ComicRepo) Create(ctx context.Context, c *models.Comic) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comic: %w", err)
	}
	return nil
}

// ListRecommended returns the site-recommended comics.
func (r *ComicRepo) ListRecommended(ctx context.Context) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Where("recommended = ?", true).
		Order("title ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list recommended: %w", err)
	}
	return list, nil
}

// ListNewest returns the n most recently released comics.
func (r *ComicRepo) ListNewest(ctx context.Context, n int) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Order("release_date DESC").
		Limit(n).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list newest: %w", err)
	}
	return list, nil
}

// AddGenresToComic attaches genres through the association table.
func (r *ComicRepo) AddGenresToComic(ctx context.Context, comicID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	var c models.Comic
	if err := r.db.WithContext(ctx).First(&c, comicID).Error; err != nil {
		return fmt.Errorf("comic not found: %w", err)
	}
	genres := make([]models.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		genres = append(genres, models.Genre{ID: id})
	}
	if err := r.db.WithContext(ctx).Model(&c).Association("Genres").Append(&genres); err != nil {
		return fmt.Errorf("append genres: %w", err)
	}
	return nil
}
