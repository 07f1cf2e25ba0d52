package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"comichub/database"
	"comichub/internal/http-api/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every statement on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, nick string) *models.User {
	t.Helper()
	u := &models.User{Email: nick + "@example.com", Nick: nick, Password: "x", RoleID: 2}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedComic(t *testing.T, db *gorm.DB, title string, ownerID int64) *models.Comic {
	t.Helper()
	c := &models.Comic{
		Title:       title,
		Image:       "comics/" + title + "/poster/poster.jpg",
		ReleaseDate: time.Now(),
		UserID:      ownerID,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedRating(t *testing.T, db *gorm.DB, userID, comicID int64, value int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Rating{UserID: userID, ComicID: comicID, Value: value}).Error)
}

func seedGenre(t *testing.T, db *gorm.DB, name string) *models.Genre {
	t.Helper()
	g := &models.Genre{Name: name}
	require.NoError(t, db.Create(g).Error)
	return g
}

func linkGenre(t *testing.T, db *gorm.DB, comicID, genreID int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.ComicGenre{ComicID: comicID, GenreID: genreID}).Error)
}

func summaryTitles(list []ComicSummary) []string {
	titles := make([]string, 0, len(list))
	for _, s := range list {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestList_SortByPopularityPrefersRatingCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	// "often" has three low ratings, "loved" two high ones. Popularity
	// orders by count first, plain rating sort by average.
	often := seedComic(t, db, "often", owner.ID)
	loved := seedComic(t, db, "loved", owner.ID)
	for i, v := range []int{3, 1, 1} {
		rater := seedUser(t, db, fmt.Sprintf("rater%d", i))
		seedRating(t, db, rater.ID, often.ID, v)
	}
	for i, v := range []int{9, 5} {
		rater := seedUser(t, db, fmt.Sprintf("fan%d", i))
		seedRating(t, db, rater.ID, loved.ID, v)
	}

	list, total, err := repo.List(context.Background(), CatalogFilter{Sort: SortByPopularity})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"often", "loved"}, summaryTitles(list))

	list, _, err = repo.List(context.Background(), CatalogFilter{Sort: SortByRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"loved", "often"}, summaryTitles(list))
}

func TestList_UnratedComicsSortLast(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	seedComic(t, db, "silent", owner.ID)
	rated := seedComic(t, db, "rated", owner.ID)
	rater := seedUser(t, db, "rater")
	seedRating(t, db, rater.ID, rated.ID, 2)

	list, _, err := repo.List(context.Background(), CatalogFilter{Sort: SortByRating})
	require.NoError(t, err)
	require.Equal(t, []string{"rated", "silent"}, summaryTitles(list))
	assert.Nil(t, list[1].AverageRating)
	assert.EqualValues(t, 0, list[1].RatingCount)
}

func TestList_MinRatingExcludesUnratedAndBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	great := seedComic(t, db, "great", owner.ID)
	mediocre := seedComic(t, db, "mediocre", owner.ID)
	seedComic(t, db, "unrated", owner.ID)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	seedRating(t, db, a.ID, great.ID, 9)
	seedRating(t, db, b.ID, great.ID, 9)
	seedRating(t, db, a.ID, mediocre.ID, 5)

	min := 8.0
	list, total, err := repo.List(context.Background(), CatalogFilter{MinRating: &min})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "great", list[0].Title)
	require.NotNil(t, list[0].AverageRating)
	assert.InDelta(t, 9.0, *list[0].AverageRating, 0.001)
	assert.EqualValues(t, 2, list[0].RatingCount)
}

func TestList_GenreFilterCollapsesMultipleMatches(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	comic := seedComic(t, db, "multi", owner.ID)
	seedComic(t, db, "other", owner.ID)
	action := seedGenre(t, db, "action")
	drama := seedGenre(t, db, "drama")
	linkGenre(t, db, comic.ID, action.ID)
	linkGenre(t, db, comic.ID, drama.ID)
	rater := seedUser(t, db, "rater")
	seedRating(t, db, rater.ID, comic.ID, 6)

	// Both requested genres match the same comic: it must appear once and
	// its aggregates must not be doubled by the join.
	list, total, err := repo.List(context.Background(), CatalogFilter{GenreIDs: []int64{action.ID, drama.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "multi", list[0].Title)
	require.NotNil(t, list[0].AverageRating)
	assert.InDelta(t, 6.0, *list[0].AverageRating, 0.001)
	assert.EqualValues(t, 1, list[0].RatingCount)
}

func TestList_TitleFilterIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	seedComic(t, db, "One Piece", owner.ID)
	seedComic(t, db, "Berserk", owner.ID)

	list, total, err := repo.List(context.Background(), CatalogFilter{Title: "one"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "One Piece", list[0].Title)
}

func TestList_Pagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	for i := 1; i <= 25; i++ {
		seedComic(t, db, fmt.Sprintf("Comic %02d", i), owner.ID)
	}

	list, total, err := repo.List(context.Background(), CatalogFilter{Sort: SortByTitle, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, list, 10)
	assert.Equal(t, "Comic 11", list[0].Title)
	assert.Equal(t, "Comic 20", list[9].Title)

	// The page past the end is empty but keeps the total.
	list, total, err = repo.List(context.Background(), CatalogFilter{Sort: SortByTitle, Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Empty(t, list)
}

func TestList_LimitIsClamped(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")

	for i := 1; i <= 35; i++ {
		seedComic(t, db, fmt.Sprintf("Comic %02d", i), owner.ID)
	}

	list, _, err := repo.List(context.Background(), CatalogFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, list, MaxPageSize)

	list, _, err = repo.List(context.Background(), CatalogFilter{})
	require.NoError(t, err)
	assert.Len(t, list, DefaultPageSize)
}

func TestTitleExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewComicRepo(db)
	owner := seedUser(t, db, "owner")
	seedComic(t, db, "Taken", owner.ID)

	exists, err := repo.TitleExists(context.Background(), "Taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TitleExists(context.Background(), "Free")
	require.NoError(t, err)
	assert.False(t, exists)
}
