package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comichub/internal/apperr"
)

func TestSanitizeTitle_CollapsesWhitespace(t *testing.T) {
	safe, err := SanitizeTitle("My  Great\tComic")
	require.NoError(t, err)
	assert.Equal(t, "My_Great_Comic", safe)
}

func TestSanitizeTitle_RejectsPathCharacters(t *testing.T) {
	for _, title := range []string{"a/b", "a\\b", "a\x00b"} {
		_, err := SanitizeTitle(title)
		require.Error(t, err, "title %q", title)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestSanitizeTitle_RejectsUnusableNames(t *testing.T) {
	for _, title := range []string{"", "   ", ".", ".."} {
		_, err := SanitizeTitle(title)
		require.Error(t, err, "title %q", title)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestTree_PathLayout(t *testing.T) {
	tree := NewTree("/data")

	assert.Equal(t, filepath.Join("/data", "comics", "Foo"), tree.ComicDir("Foo"))
	assert.Equal(t, filepath.Join("/data", "comics", "Foo", "poster", "Foo_poster.png"), tree.PosterPath("Foo", ".png"))
	assert.Equal(t, filepath.Join("/data", "comics", "Foo", "comic", "vl2", "ch3"), tree.ChapterDir("Foo", 2, 3))
	assert.Equal(t, filepath.Join("/data", "comics", "Foo", "comic", "vl2", "ch3", "7.jpg"), tree.PagePath("Foo", 2, 3, 7, ".jpg"))
}

func TestTree_RelAbsRoundTrip(t *testing.T) {
	tree := NewTree("/data")

	abs := tree.PagePath("Foo", 1, 1, 1, ".jpg")
	rel := tree.Rel(abs)
	assert.Equal(t, "comics/Foo/comic/vl1/ch1/1.jpg", rel)
	assert.Equal(t, abs, tree.Abs(rel))
}

func TestTree_WriteFileOverwritesAtomically(t *testing.T) {
	tree := NewTree(t.TempDir())
	dir := tree.PosterDir("Foo")
	require.NoError(t, tree.EnsureDir(dir))

	path := tree.PosterPath("Foo", ".png")
	require.NoError(t, tree.WriteFile(path, strings.NewReader("first")))
	require.NoError(t, tree.WriteFile(path, strings.NewReader("second")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Foo_poster.png", entries[0].Name())
}

func TestTree_RemoveSubtreeAbsentIsNotAnError(t *testing.T) {
	tree := NewTree(t.TempDir())
	assert.NoError(t, tree.RemoveSubtree(tree.ComicDir("never_created")))
}

func TestTree_RemoveSubtreeDeletesRecursively(t *testing.T) {
	tree := NewTree(t.TempDir())
	dir := tree.ChapterDir("Foo", 1, 1)
	require.NoError(t, tree.EnsureDir(dir))
	require.NoError(t, tree.WriteFile(tree.PagePath("Foo", 1, 1, 1, ".jpg"), strings.NewReader("x")))

	require.NoError(t, tree.RemoveSubtree(tree.ComicDir("Foo")))
	_, err := os.Stat(tree.ComicDir("Foo"))
	assert.True(t, os.IsNotExist(err))
}

func TestTree_RemoveIfEmpty(t *testing.T) {
	tree := NewTree(t.TempDir())
	dir := tree.ChapterDir("Foo", 1, 1)
	require.NoError(t, tree.EnsureDir(dir))
	require.NoError(t, tree.WriteFile(tree.PagePath("Foo", 1, 1, 1, ".jpg"), strings.NewReader("x")))

	// Populated directory stays.
	tree.RemoveIfEmpty(dir)
	_, err := os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(tree.PagePath("Foo", 1, 1, 1, ".jpg")))

	// Empty directory goes.
	tree.RemoveIfEmpty(dir)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
