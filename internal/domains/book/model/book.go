package model

import (
	"time"

	"github.com/google/uuid"
)

// Language is the closed set of catalog languages.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageAZ Language = "AZ"
	LanguageTR Language = "TR"
	LanguageRU Language = "RU"
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageEN, LanguageAZ, LanguageTR, LanguageRU:
		return Language(s), true
	}
	return "", false
}

// MinPublicationYear is the oldest publication year the catalog accepts.
const MinPublicationYear = 1500

type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	AuthorID        uuid.UUID `json:"author_id" db:"author_id"`
	ISBN            string    `json:"isbn" db:"isbn"`
	PublicationYear int       `json:"publication_year" db:"publication_year"`
	Topics          string    `json:"topics" db:"topics"`

	// TotalCopies is the administrator-declared capacity. It is NOT kept
	// in sync with the number of copy rows; availability math subtracts
	// borrowed copies from this figure as-is.
	TotalCopies int `json:"total_copies" db:"total_copies"`

	Language  Language  `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
