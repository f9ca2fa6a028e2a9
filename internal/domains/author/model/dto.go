package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

// CreateAuthorRequest - POST /v1/authors
type CreateAuthorRequest struct {
	Name      string  `json:"name" binding:"required"`
	Biography *string `json:"biography,omitempty"`
	BirthDate string  `json:"birth_date" binding:"required"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.BirthDate,
			validation.Required.Error("birth_date is required"),
			validation.Date(dateLayout).Error("birth_date must be YYYY-MM-DD"),
		),
	)
}

// ParsedBirthDate converts the validated date string. Call after Validate.
func (r CreateAuthorRequest) ParsedBirthDate() (time.Time, error) {
	return time.Parse(dateLayout, r.BirthDate)
}

// UpdateAuthorRequest - PUT /v1/authors/:id. All fields optional; nil
// means leave unchanged.
type UpdateAuthorRequest struct {
	Name      *string `json:"name,omitempty"`
	Biography *string `json:"biography,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name cannot be empty"),
			validation.Length(1, 255),
		),
		validation.Field(&r.BirthDate,
			validation.Date(dateLayout).Error("birth_date must be YYYY-MM-DD"),
		),
	)
}

func (r UpdateAuthorRequest) ApplyTo(a *Author) error {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Biography != nil {
		a.Biography = r.Biography
	}
	if r.BirthDate != nil {
		parsed, err := time.Parse(dateLayout, *r.BirthDate)
		if err != nil {
			return ErrInvalidBirthDate
		}
		a.BirthDate = parsed
	}
	return nil
}

// AuthorFilter - query parameters for listing authors.
type AuthorFilter struct {
	Search string `form:"search"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
