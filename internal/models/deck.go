package models

import (
	"slices"
	"time"
)

// DeckFormat represents the play format a deck is built for
type DeckFormat string

const (
	DeckFormatStandard  DeckFormat = "Standard"
	DeckFormatModern    DeckFormat = "Modern"
	DeckFormatCommander DeckFormat = "Commander"
	DeckFormatPauper    DeckFormat = "Pauper"
)

// DeckFormats lists every format in declaration order
var DeckFormats = []DeckFormat{
	DeckFormatStandard,
	DeckFormatModern,
	DeckFormatCommander,
	DeckFormatPauper,
}

// IsValid reports whether f is one of the known formats
func (f DeckFormat) IsValid() bool {
	return slices.Contains(DeckFormats, f)
}

// Deck represents a user's named grouping of cards.
// CardIDs keeps insertion order but never holds the same id twice.
type Deck struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Format    DeckFormat `json:"format"`
	CreatedAt time.Time  `json:"created_at"`
	OwnerID   string     `json:"owner_id"`
	CardIDs   []string   `json:"card_ids"`
}

// HasCard reports whether the deck already holds cardID
func (d *Deck) HasCard(cardID string) bool {
	return slices.Contains(d.CardIDs, cardID)
}
