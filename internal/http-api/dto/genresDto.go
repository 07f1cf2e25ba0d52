package dto

type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=255"`
}
