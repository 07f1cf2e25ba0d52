package models

import "time"

type Comic struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"uniqueIndex;size:255;not null"`
	Description *string   `json:"desc,omitempty" gorm:"size:255"`
	Image       string    `json:"img" gorm:"size:255;not null"`
	ReleaseDate time.Time `json:"date_of_out" gorm:"type:date;not null"`
	Recommended bool      `json:"website_recommendation" gorm:"not null;default:false"`
	UserID      int64     `json:"user_id" gorm:"not null;index"`

	// associations
	User    *User    `json:"user,omitempty"`
	Genres  []Genre  `json:"genres,omitempty" gorm:"many2many:comic_genres;"`
	Volumes []Volume `json:"volumes,omitempty"`
}

func (Comic) TableName() string {
	return "comics"
}
