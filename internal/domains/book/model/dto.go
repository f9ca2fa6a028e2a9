package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CreateBookRequest - POST /v1/books
type CreateBookRequest struct {
	Title           string `json:"title" binding:"required"`
	AuthorID        string `json:"author_id" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	PublicationYear int    `json:"publication_year" binding:"required"`
	Topics          string `json:"topics"`
	TotalCopies     int    `json:"total_copies"`
	Language        string `json:"language"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.AuthorID,
			validation.Required.Error("author_id is required"),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.Length(10, 13),
		),
		validation.Field(&r.PublicationYear,
			validation.Required.Error("publication_year is required"),
			validation.Min(MinPublicationYear).Error("publication_year is too old"),
			validation.Max(time.Now().Year()).Error("publication_year cannot be in the future"),
		),
		validation.Field(&r.TotalCopies,
			validation.Min(0).Error("total_copies cannot be negative"),
		),
		validation.Field(&r.Language,
			validation.In("EN", "AZ", "TR", "RU").Error("language must be one of EN, AZ, TR, RU"),
		),
	)
}

// UpdateBookRequest - PUT /v1/books/:id. Nil fields stay unchanged.
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	AuthorID        *string `json:"author_id,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
	Topics          *string `json:"topics,omitempty"`
	TotalCopies     *int    `json:"total_copies,omitempty"`
	Language        *string `json:"language,omitempty"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			validation.Length(1, 255),
		),
		validation.Field(&r.ISBN,
			validation.NilOrNotEmpty.Error("isbn cannot be empty"),
			validation.Length(10, 13),
		),
	)
}

// BookFilter - query parameters for listing books.
type BookFilter struct {
	Search        string `form:"search"` // matches title and topics
	AuthorID      string `form:"author_id"`
	Language      string `form:"language"`
	YearMin       int    `form:"year_min"`
	YearMax       int    `form:"year_max"`
	AvailableOnly bool   `form:"available_only"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// CreateCopyRequest - POST /v1/books/:id/copies. BookID comes from the path.
type CreateCopyRequest struct {
	BookID string `json:"-"`
	Status string `json:"status"`
}

func (r CreateCopyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book_id is required")),
		validation.Field(&r.Status,
			validation.In("available", "borrowed", "maintenance").Error("invalid copy status"),
		),
	)
}

// UpdateCopyStatusRequest - PATCH /v1/copies/:id
type UpdateCopyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r UpdateCopyStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("status is required"),
			validation.In("available", "borrowed", "maintenance").Error("invalid copy status"),
		),
	)
}

// BookResponse includes the on-demand availability count.
type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	AuthorID        uuid.UUID `json:"author_id"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publication_year"`
	Topics          string    `json:"topics,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	Language        Language  `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Topics:          b.Topics,
		TotalCopies:     b.TotalCopies,
		Language:        b.Language,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
