package models

type User struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Nick     string `json:"nick" gorm:"uniqueIndex;size:255;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	RoleID   int64  `json:"role_id" gorm:"not null"`

	Role *Role `json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

func (Role) TableName() string {
	return "roles"
}
