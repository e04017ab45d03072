package events

import (
	"fmt"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

const maxIDLength = 64

// ValidatePayload checks a decoded stream payload before it is persisted.
func ValidatePayload(p Payload) error {
	if !p.Kind.IsValid() {
		return fmt.Errorf("unknown kind %q", p.Kind)
	}
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if p.BookID == "" {
		return fmt.Errorf("book_id is required")
	}
	if p.EntryID == "" {
		return fmt.Errorf("entry_id is required")
	}
	if len(p.UserID) > maxIDLength || len(p.BookID) > maxIDLength || len(p.EntryID) > maxIDLength {
		return fmt.Errorf("id too long")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("unknown list %q", p.Status)
	}
	if p.Rating < 0 || p.Rating > model.MaxEntryRating {
		return fmt.Errorf("rate out of range")
	}
	if p.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}
	return nil
}
