package models

import "time"

// Collection represents a named, dated card set
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
}

// ReleaseYear returns the calendar year the collection was released in
func (c *Collection) ReleaseYear() int {
	return c.ReleaseDate.UTC().Year()
}
