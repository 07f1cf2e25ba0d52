package dto

type CreateChapterDTO struct {
	Title *string `json:"title,omitempty" binding:"omitempty,max=255"`
}

type VolumeCreatedResponse struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}

type ChapterCreatedResponse struct {
	ID     int64   `json:"id"`
	Number int     `json:"number"`
	Title  *string `json:"title,omitempty"`
}

// PagesUploadedResponse lists the page numbers assigned to an upload, in the
// order the files were received.
type PagesUploadedResponse struct {
	PageNumbers []int `json:"page_numbers"`
}
