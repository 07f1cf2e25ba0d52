package models

type Chapter struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Number   int     `json:"number" gorm:"not null"`
	Title    *string `json:"title,omitempty" gorm:"size:255"`
	VolumeID int64   `json:"volume_id" gorm:"not null;index"`

	Volume *Volume `json:"-"`
	Pages  []Page  `json:"pages,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}
