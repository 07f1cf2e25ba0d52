package models

// Page numbers only grow within a chapter: new uploads start at
// max(existing)+1, so numbers freed by deletes are never reused.
type Page struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Number    int    `json:"number" gorm:"not null;uniqueIndex:idx_chapter_page"`
	Image     string `json:"image_url" gorm:"size:255;not null"`
	ChapterID int64  `json:"chapter_id" gorm:"not null;index;uniqueIndex:idx_chapter_page"`

	Chapter *Chapter `json:"-"`
}

func (Page) TableName() string {
	return "pages"
}
