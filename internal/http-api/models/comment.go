package models

import "time"

type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	ComicID   int64     `json:"comic_id" gorm:"not null;index"`
	Body      string    `json:"comment" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User  *User  `json:"user,omitempty"`
	Comic *Comic `json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
