package dto

import (
	"time"

	"comichub/internal/http-api/models"
)

// CreateComicStub is the minimal response of the create endpoint.
type CreateComicStub struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type PageResponse struct {
	ID       int64  `json:"id"`
	Number   int    `json:"number"`
	ImageURL string `json:"image_url"`
}

type ChapterResponse struct {
	ID     int64          `json:"id"`
	Number int            `json:"number"`
	Title  *string        `json:"title,omitempty"`
	Pages  []PageResponse `json:"pages,omitempty"`
}

type VolumeResponse struct {
	ID       int64             `json:"id"`
	Number   int               `json:"number"`
	Chapters []ChapterResponse `json:"chapters"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Nick  string `json:"nick"`
}

// ComicDetailResponse carries the full hierarchy plus the per-query rating
// aggregates. The aggregates are assigned onto the response, never stored.
type ComicDetailResponse struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"desc,omitempty"`
	Image         string         `json:"img"`
	ReleaseDate   time.Time      `json:"date_of_out"`
	Recommended   bool           `json:"website_recommendation"`
	UserID        int64          `json:"user_id"`
	AverageRating *float64       `json:"average_rating"`
	RatingCount   int64          `json:"rating_count"`
	User          *UserResponse  `json:"user,omitempty"`
	Genres        []models.Genre `json:"genres"`
	Volumes       []VolumeResponse `json:"volumes"`
}

func FromPageToResponse(p models.Page) PageResponse {
	return PageResponse{ID: p.ID, Number: p.Number, ImageURL: p.Image}
}

func FromChapterToResponse(c models.Chapter) ChapterResponse {
	resp := ChapterResponse{ID: c.ID, Number: c.Number, Title: c.Title}
	for _, p := range c.Pages {
		resp.Pages = append(resp.Pages, FromPageToResponse(p))
	}
	return resp
}

func FromVolumeToResponse(v models.Volume) VolumeResponse {
	resp := VolumeResponse{ID: v.ID, Number: v.Number, Chapters: []ChapterResponse{}}
	for _, c := range v.Chapters {
		resp.Chapters = append(resp.Chapters, FromChapterToResponse(c))
	}
	return resp
}

func FromUserToResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Email: u.Email, Nick: u.Nick}
}

func FromComicToDetail(c *models.Comic, avg *float64, count int64) ComicDetailResponse {
	resp := ComicDetailResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Image:         c.Image,
		ReleaseDate:   c.ReleaseDate,
		Recommended:   c.Recommended,
		UserID:        c.UserID,
		AverageRating: avg,
		RatingCount:   count,
		User:          FromUserToResponse(c.User),
		Genres:        c.Genres,
		Volumes:       []VolumeResponse{},
	}
	if resp.Genres == nil {
		resp.Genres = []models.Genre{}
	}
	for _, v := range c.Volumes {
		resp.Volumes = append(resp.Volumes, FromVolumeToResponse(v))
	}
	return resp
}
