package model

import (
	"time"

	"github.com/google/uuid"
)

// CopyStatus is the lifecycle state of a physical copy.
type CopyStatus string

const (
	CopyAvailable   CopyStatus = "available"
	CopyBorrowed    CopyStatus = "borrowed"
	CopyMaintenance CopyStatus = "maintenance"
)

func ParseCopyStatus(s string) (CopyStatus, bool) {
	switch CopyStatus(s) {
	case CopyAvailable, CopyBorrowed, CopyMaintenance:
		return CopyStatus(s), true
	}
	return "", false
}

// BookCopy is a physical lendable unit of a Book.
type BookCopy struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BookID    uuid.UUID  `json:"book_id" db:"book_id"`
	Status    CopyStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
