package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"comichub/database"
	"comichub/internal/apperr"
	"comichub/internal/assets"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

type testEnv struct {
	db        *gorm.DB
	tree      *assets.Tree
	comics    *repository.ComicRepo
	hierarchy repository.HierarchyRepository
	content   ContentService
}

// newTestEnv wires the content service against an in-memory database and a
// throwaway asset root.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	tree := assets.NewTree(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	comics := repository.NewComicRepo(db)
	hierarchy := repository.NewHierarchyRepository(db)

	return &testEnv{
		db:        db,
		tree:      tree,
		comics:    comics,
		hierarchy: hierarchy,
		content:   NewContentService(comics, hierarchy, tree, nil, logger),
	}
}

func (e *testEnv) user(t *testing.T, nick string, roleID int64) Principal {
	t.Helper()
	u := &models.User{Email: nick + "@example.com", Nick: nick, Password: "x", RoleID: roleID}
	require.NoError(t, e.db.Create(u).Error)
	return Principal{ID: u.ID, Email: u.Email, Nick: u.Nick, RoleID: roleID}
}

func (e *testEnv) createComic(t *testing.T, p Principal, title string) *models.Comic {
	t.Helper()
	comic, err := e.content.CreateComic(context.Background(), p, CreateComicInput{
		Title:      title,
		PosterName: "poster.png",
		Poster:     strings.NewReader("poster-bytes"),
	})
	require.NoError(t, err)
	return comic
}

func pageUploads(names ...string) []PageUpload {
	files := make([]PageUpload, 0, len(names))
	for _, n := range names {
		files = append(files, PageUpload{Name: n, Data: strings.NewReader("img:" + n)})
	}
	return files
}

func TestCreateComic_WritesPosterBeforeRecord(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)

	comic := env.createComic(t, owner, "My  Great Comic")

	assert.Equal(t, "My  Great Comic", comic.Title)
	assert.Equal(t, "comics/My_Great_Comic/poster/My_Great_Comic_poster.png", comic.Image)
	assert.Equal(t, owner.ID, comic.UserID)
	assert.False(t, comic.Recommended)

	content, err := os.ReadFile(env.tree.Abs(comic.Image))
	require.NoError(t, err)
	assert.Equal(t, "poster-bytes", string(content))
}

func TestCreateComic_DuplicateTitleConflicts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	env.createComic(t, owner, "Foo")

	_, err := env.content.CreateComic(context.Background(), owner, CreateComicInput{
		Title:      "Foo",
		PosterName: "poster.png",
		Poster:     strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateComic_UnsafeTitleRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)

	for _, title := range []string{"a/b", "..", "   "} {
		_, err := env.content.CreateComic(context.Background(), owner, CreateComicInput{
			Title:      title,
			PosterName: "poster.png",
			Poster:     strings.NewReader("x"),
		})
		require.Error(t, err, "title %q", title)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestVolumeAndChapterNumbering_DenseAtCreation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")

	v1, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	v2, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Number)
	assert.Equal(t, 2, v2.Number)

	c1, err := env.content.CreateChapter(context.Background(), owner, v1.ID, nil)
	require.NoError(t, err)
	c2, err := env.content.CreateChapter(context.Background(), owner, v1.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c1.Number)
	assert.Equal(t, 2, c2.Number)

	// Directories exist ahead of any page upload.
	_, err = os.Stat(env.tree.ChapterDir("Foo", 1, 2))
	assert.NoError(t, err)
}

func TestUploadPages_NumbersNeverReused(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	volume, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	chapter, err := env.content.CreateChapter(context.Background(), owner, volume.ID, nil)
	require.NoError(t, err)

	numbers, err := env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, numbers)

	// Delete the middle page, then upload one more: the freed number must
	// not be reassigned.
	var page2 models.Page
	require.NoError(t, env.db.Where("chapter_id = ? AND number = ?", chapter.ID, 2).First(&page2).Error)
	require.NoError(t, env.content.DeletePage(context.Background(), owner, page2.ID))

	numbers, err = env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("d.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []int{4}, numbers)

	var surviving []int
	require.NoError(t, env.db.Model(&models.Page{}).
		Where("chapter_id = ?", chapter.ID).
		Order("number ASC").
		Pluck("number", &surviving).Error)
	assert.Equal(t, []int{1, 3, 4}, surviving)

	// The deleted page's file is gone, the survivors' files are not.
	_, err = os.Stat(env.tree.PagePath("Foo", 1, 1, 2, ".jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(env.tree.PagePath("Foo", 1, 1, 1, ".jpg"))
	assert.NoError(t, err)
}

func TestDeletePage_PrunesEmptyChapterDirectory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	volume, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	chapter, err := env.content.CreateChapter(context.Background(), owner, volume.ID, nil)
	require.NoError(t, err)
	_, err = env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("only.jpg"))
	require.NoError(t, err)

	var page models.Page
	require.NoError(t, env.db.Where("chapter_id = ?", chapter.ID).First(&page).Error)
	require.NoError(t, env.content.DeletePage(context.Background(), owner, page.ID))

	_, err = os.Stat(env.tree.ChapterDir("Foo", 1, 1))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteChapter_RemovesSubtreeAndRecords(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	volume, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	chapter, err := env.content.CreateChapter(context.Background(), owner, volume.ID, nil)
	require.NoError(t, err)
	_, err = env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("a.jpg", "b.jpg"))
	require.NoError(t, err)

	var page models.Page
	require.NoError(t, env.db.Where("chapter_id = ?", chapter.ID).First(&page).Error)

	require.NoError(t, env.content.DeleteChapter(context.Background(), owner, chapter.ID))

	_, err = os.Stat(env.tree.ChapterDir("Foo", 1, 1))
	assert.True(t, os.IsNotExist(err))

	err = env.content.DeletePage(context.Background(), owner, page.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The volume directory stays.
	_, err = os.Stat(env.tree.VolumeDir("Foo", 1))
	assert.NoError(t, err)
}

func TestDeleteVolume_SurvivorsKeepTheirNumbers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	v1, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	v2, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)

	require.NoError(t, env.content.DeleteVolume(context.Background(), owner, v1.ID))

	survivor, err := env.hierarchy.GetVolume(context.Background(), v2.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, survivor.Number)
	_, err = os.Stat(env.tree.VolumeDir("Foo", 1))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(env.tree.VolumeDir("Foo", 2))
	assert.NoError(t, err)
}

func TestDeleteComic_RemovesEntireAssetTree(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	volume, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	chapter, err := env.content.CreateChapter(context.Background(), owner, volume.ID, nil)
	require.NoError(t, err)
	_, err = env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("a.jpg"))
	require.NoError(t, err)

	require.NoError(t, env.content.DeleteComic(context.Background(), owner, comic.ID))

	_, err = os.Stat(env.tree.ComicDir("Foo"))
	assert.True(t, os.IsNotExist(err))
	_, err = env.hierarchy.GetComic(context.Background(), comic.ID)
	require.Error(t, err)
}

func TestOwnership_OtherUsersCannotMutate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	stranger := env.user(t, "stranger", 2)
	admin := env.user(t, "admin", 1)
	comic := env.createComic(t, owner, "Foo")

	_, err := env.content.CreateVolume(context.Background(), stranger, comic.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	err = env.content.DeleteComic(context.Background(), stranger, comic.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// Admins act on any comic.
	_, err = env.content.CreateVolume(context.Background(), admin, comic.ID)
	assert.NoError(t, err)
}

func TestContentOps_UnknownTargetsAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)

	_, err := env.content.CreateVolume(context.Background(), owner, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = env.content.CreateChapter(context.Background(), owner, 404, nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = env.content.UploadPages(context.Background(), owner, 404, pageUploads("a.jpg"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	err = env.content.DeleteComic(context.Background(), owner, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUploadPages_ExtensionDefaultsToJpg(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", 2)
	comic := env.createComic(t, owner, "Foo")
	volume, err := env.content.CreateVolume(context.Background(), owner, comic.ID)
	require.NoError(t, err)
	chapter, err := env.content.CreateChapter(context.Background(), owner, volume.ID, nil)
	require.NoError(t, err)

	_, err = env.content.UploadPages(context.Background(), owner, chapter.ID, pageUploads("extensionless"))
	require.NoError(t, err)

	var page models.Page
	require.NoError(t, env.db.Where("chapter_id = ?", chapter.ID).First(&page).Error)
	assert.Equal(t, ".jpg", filepath.Ext(page.Image))
}
