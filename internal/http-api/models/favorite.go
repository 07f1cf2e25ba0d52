package models

// Favorite is membership-only: the composite primary key is the whole row.
type Favorite struct {
	UserID  int64 `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	ComicID int64 `json:"comic_id" gorm:"primaryKey;autoIncrement:false"`

	Comic *Comic `json:"comic,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
