package models

// ComicGenre is the explicit association entity behind the Comic<->Genre
// many-to-many relation. Kept as a named model so the catalog query can join
// against it directly.
type ComicGenre struct {
	ComicID int64 `json:"comic_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey"`
}

func (ComicGenre) TableName() string {
	return "comic_genres"
}
