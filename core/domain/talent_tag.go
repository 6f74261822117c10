package domain

import (
	"strings"
	"time"
)

const MaxTagLength = 50

// Tag is an entry of the tag vocabulary. UsageCount counts the consultants
// carrying it.
type Tag struct {
	Name       string     `json:"name" db:"name"`
	UsageCount int        `json:"usage_count" db:"usage_count"`
	CreatedBy  *string    `json:"created_by" db:"created_by"`
	CreatedAt  *time.Time `json:"created_at" db:"created_at"`
}

// CleanTagName trims name and reports whether it is usable.
func CleanTagName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxTagLength {
		return "", false
	}
	return name, true
}
