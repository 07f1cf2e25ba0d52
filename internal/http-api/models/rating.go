package models

import "time"

// Rating holds at most one row per (user, comic); writes go through an
// upsert keyed on the composite unique index.
type Rating struct {
	ID      int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID  int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_comic_rating"`
	ComicID int64     `json:"comic_id" gorm:"not null;uniqueIndex:idx_user_comic_rating"`
	Value   int       `json:"value" gorm:"not null"`
	RatedAt time.Time `json:"rated_at" gorm:"autoUpdateTime"`

	User  *User  `json:"user,omitempty"`
	Comic *Comic `json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}
