package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"comichub/internal/apperr"
)

// Tree maps logical comic positions (title, volume, chapter, page) onto a
// directory layout under a single configured root:
//
//	<root>/comics/<safe-title>/poster/<safe-title>_poster.<ext>
//	<root>/comics/<safe-title>/comic/vl<N>/ch<M>/<page><ext>
//
// All side effects stay confined to the root; callers never hand in raw
// paths, only descriptors built from the funcs below.
type Tree struct {
	root string
}

func NewTree(root string) *Tree {
	return &Tree{root: root}
}

func (t *Tree) Root() string { return t.root }

// SanitizeTitle turns a human-supplied title into a path segment. Whitespace
// runs collapse to a single underscore. Titles that would escape the comic
// directory are rejected outright instead of being patched up.
func SanitizeTitle(title string) (string, error) {
	if strings.ContainsAny(title, "/\\\x00") {
		return "", apperr.Validation("title contains forbidden path characters")
	}
	safe := strings.Join(strings.Fields(title), "_")
	if safe == "" || safe == "." || safe == ".." {
		return "", apperr.Validation("title is not usable as a folder name")
	}
	return safe, nil
}

func (t *Tree) ComicDir(safeTitle string) string {
	return filepath.Join(t.root, "comics", safeTitle)
}

func (t *Tree) PosterDir(safeTitle string) string {
	return filepath.Join(t.ComicDir(safeTitle), "poster")
}

func (t *Tree) PosterPath(safeTitle, ext string) string {
	return filepath.Join(t.PosterDir(safeTitle), safeTitle+"_poster"+ext)
}

func (t *Tree) ContentDir(safeTitle string) string {
	return filepath.Join(t.ComicDir(safeTitle), "comic")
}

func (t *Tree) VolumeDir(safeTitle string, volume int) string {
	return filepath.Join(t.ContentDir(safeTitle), fmt.Sprintf("vl%d", volume))
}

func (t *Tree) ChapterDir(safeTitle string, volume, chapter int) string {
	return filepath.Join(t.VolumeDir(safeTitle, volume), fmt.Sprintf("ch%d", chapter))
}

func (t *Tree) PagePath(safeTitle string, volume, chapter, page int, ext string) string {
	return filepath.Join(t.ChapterDir(safeTitle, volume, chapter), fmt.Sprintf("%d%s", page, ext))
}

// Abs resolves a stored relative slash path back to an absolute path under
// the root.
func (t *Tree) Abs(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

// Rel converts an absolute path under the root into the relative,
// slash-normalized form stored in records.
func (t *Tree) Rel(absPath string) string {
	rel, err := filepath.Rel(t.root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// EnsureDir is an idempotent create-if-absent.
func (t *Tree) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return apperr.AssetIO("create directory "+t.Rel(path), err)
	}
	return nil
}

// WriteFile writes the reader's content to path, overwriting atomically if
// the file already exists: content lands in a temp file in the same
// directory first and is renamed into place.
func (t *Tree) WriteFile(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")

	f, err := os.Create(tmp)
	if err != nil {
		return apperr.AssetIO("create file "+t.Rel(path), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperr.AssetIO("write file "+t.Rel(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperr.AssetIO("close file "+t.Rel(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperr.AssetIO("rename file "+t.Rel(path), err)
	}
	return nil
}

// RemoveSubtree recursively deletes path. A path that is already gone is not
// an error; only genuine I/O faults surface.
func (t *Tree) RemoveSubtree(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return apperr.AssetIO("remove "+t.Rel(path), err)
	}
	return nil
}

// RemoveIfEmpty prunes a directory that became empty. Absent or still
// populated directories are silently ignored.
func (t *Tree) RemoveIfEmpty(dir string) {
	// os.Remove refuses non-empty directories, which is exactly the
	// best-effort semantics wanted here.
	_ = os.Remove(dir)
}
