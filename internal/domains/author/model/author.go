package model

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Biography *string   `json:"biography" db:"biography"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Biography *string   `json:"biography,omitempty"`
	BirthDate string    `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Author) ToResponse() *AuthorResponse {
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Biography: a.Biography,
		BirthDate: a.BirthDate.Format("2006-01-02"),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
