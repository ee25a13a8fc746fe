// Package domain defines the core entities of the gallery.
package domain

import "time"

// Category is a named, slugged tag that profiles can belong to.
// Categories are seeded at startup and never mutated afterwards.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"` // URL-safe routing key: "latina", "thick"
	CreatedAt time.Time `json:"created_at"`
}

// SlugAll is the pseudo-category slug meaning "no filter".
const SlugAll = "all"
