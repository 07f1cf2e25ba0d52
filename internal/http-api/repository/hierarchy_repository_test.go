package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"comichub/internal/http-api/models"
)

func seedHierarchy(t *testing.T, db *gorm.DB, ownerID int64) (*models.Comic, *models.Volume, *models.Chapter, []models.Page) {
	t.Helper()
	comic := seedComic(t, db, "Tree", ownerID)
	volume := &models.Volume{Number: 1, ComicID: comic.ID}
	require.NoError(t, db.Create(volume).Error)
	chapter := &models.Chapter{Number: 1, VolumeID: volume.ID}
	require.NoError(t, db.Create(chapter).Error)
	pages := make([]models.Page, 3)
	for i := range pages {
		pages[i] = models.Page{Number: i + 1, Image: fmt.Sprintf("comics/Tree/comic/vl1/ch1/%d.jpg", i+1), ChapterID: chapter.ID}
	}
	require.NoError(t, db.Create(&pages).Error)
	return comic, volume, chapter, pages
}

func TestMaxPageNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	owner := seedUser(t, db, "owner")
	_, _, chapter, pages := seedHierarchy(t, db, owner.ID)

	max, err := repo.MaxPageNumber(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, max)

	// Deleting the highest page lowers the maximum; numbering restarts from
	// the surviving maximum, not from the count.
	require.NoError(t, repo.DeletePage(context.Background(), pages[2].ID))
	max, err = repo.MaxPageNumber(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, max)
}

func TestMaxPageNumber_EmptyChapterIsZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	owner := seedUser(t, db, "owner")
	comic := seedComic(t, db, "Empty", owner.ID)
	volume := &models.Volume{Number: 1, ComicID: comic.ID}
	require.NoError(t, db.Create(volume).Error)
	chapter := &models.Chapter{Number: 1, VolumeID: volume.ID}
	require.NoError(t, db.Create(chapter).Error)

	max, err := repo.MaxPageNumber(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}

func TestDeleteChapterTree_RemovesPages(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	owner := seedUser(t, db, "owner")
	_, _, chapter, pages := seedHierarchy(t, db, owner.ID)

	require.NoError(t, repo.DeleteChapterTree(context.Background(), chapter.ID))

	_, err := repo.GetChapter(context.Background(), chapter.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	for _, p := range pages {
		_, err := repo.GetPage(context.Background(), p.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	}
}

func TestDeleteComicTree_RemovesHierarchyAndRelations(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	owner := seedUser(t, db, "owner")
	reader := seedUser(t, db, "reader")
	comic, volume, chapter, _ := seedHierarchy(t, db, owner.ID)

	genre := seedGenre(t, db, "action")
	linkGenre(t, db, comic.ID, genre.ID)
	seedRating(t, db, reader.ID, comic.ID, 7)
	require.NoError(t, db.Create(&models.Favorite{UserID: reader.ID, ComicID: comic.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: reader.ID, ComicID: comic.ID, Body: "nice"}).Error)

	require.NoError(t, repo.DeleteComicTree(context.Background(), comic.ID))

	_, err := repo.GetComic(context.Background(), comic.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repo.GetVolume(context.Background(), volume.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repo.GetChapter(context.Background(), chapter.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	for table, model := range map[string]any{
		"comic_genres": &models.ComicGenre{},
		"ratings":      &models.Rating{},
		"favorites":    &models.Favorite{},
		"comments":     &models.Comment{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("comic_id = ?", comic.ID).Count(&count).Error)
		assert.Zero(t, count, "table %s still references the comic", table)
	}

	// Non-owned entities survive the cascade.
	var genres, users int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genres).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, genres)
	assert.EqualValues(t, 2, users)
}
