package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var dailyRate = decimal.RequireFromString("1.00")

func TestLateFee(t *testing.T) {
	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before due date", due.Add(-48 * time.Hour), "0"},
		{"exactly on due date", due, "0"},
		{"under one day late", due.Add(23 * time.Hour), "0"},
		{"exactly one day late", due.Add(24 * time.Hour), "1.00"},
		{"partial days floor down", due.Add(3*24*time.Hour + 7*time.Hour), "3.00"},
		{"three days late", due.Add(3 * 24 * time.Hour), "3.00"},
		{"thirty days late", due.Add(30 * 24 * time.Hour), "30.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LateFee(tt.now, due, dailyRate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, got)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestIsOverdue(t *testing.T) {
	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	returned := due.Add(5 * 24 * time.Hour)

	outstanding := &BorrowRecord{DueDate: due}
	closed := &BorrowRecord{DueDate: due, ReturnDate: &returned}

	assert.False(t, outstanding.IsOverdue(due.Add(-time.Hour)))
	assert.False(t, outstanding.IsOverdue(due))
	assert.True(t, outstanding.IsOverdue(due.Add(time.Minute)))

	// A closed record is never overdue, no matter how late it came back.
	assert.False(t, closed.IsOverdue(due.Add(365 * 24 * time.Hour)))
	assert.True(t, outstanding.Outstanding())
	assert.False(t, closed.Outstanding())
}
