package models

// Volume numbers are dense at creation time (count+1); deleting a volume
// leaves a gap, survivors are never renumbered.
type Volume struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Number  int   `json:"number" gorm:"not null"`
	ComicID int64 `json:"comic_id" gorm:"not null;index"`

	Comic    *Comic    `json:"-"`
	Chapters []Chapter `json:"chapters,omitempty"`
}

func (Volume) TableName() string {
	return "volumes"
}
