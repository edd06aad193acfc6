package models

import "time"

// RarityCount is one row of the cards-by-rarity report
type RarityCount struct {
	Rarity     CardRarity `json:"rarity"`
	TotalCards int64      `json:"total_cards"`
}

// TypeCount is one row of the cards-by-type report
type TypeCount struct {
	Type       CardType `json:"type"`
	TotalCards int64    `json:"total_cards"`
}

// FormatCount is one row of the decks-by-format report
type FormatCount struct {
	Format DeckFormat `json:"format"`
	Total  int64      `json:"total"`
}

// YearCount is one row of the collections-by-year report
type YearCount struct {
	Year  int   `json:"year"`
	Total int64 `json:"total"`
}

// CollectionCardCount pairs a collection with the number of cards referencing it
type CollectionCardCount struct {
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
	TotalCards     int64  `json:"total_cards"`
}

// StatsOverview bundles every catalog report
type StatsOverview struct {
	CardsByRarity            []RarityCount         `json:"cards_by_rarity"`
	CardsByType              []TypeCount           `json:"cards_by_type"`
	DecksByFormat            map[DeckFormat]int64  `json:"decks_by_format"`
	CollectionsByYear        []YearCount           `json:"collections_by_year"`
	CardsPerCollection       []CollectionCardCount `json:"cards_per_collection"`
	CollectionsWithCardCount []CollectionCardCount `json:"collections_with_card_count"`
	GeneratedAt              time.Time             `json:"generated_at"`
}

// DanglingRef records a stored id that no longer resolves
type DanglingRef struct {
	EntityID    string `json:"entity_id"`
	EntityName  string `json:"entity_name"`
	MissingKind string `json:"missing_kind"`
	MissingID   string `json:"missing_id"`
}

// IntegrityReport lists every dangling reference found by an audit
type IntegrityReport struct {
	DecksWithoutOwner      []DanglingRef `json:"decks_without_owner"`
	DecksWithMissingCards  []DanglingRef `json:"decks_with_missing_cards"`
	CardsWithoutCollection []DanglingRef `json:"cards_without_collection"`
	DecksScanned           int           `json:"decks_scanned"`
	CardsScanned           int           `json:"cards_scanned"`
	CheckedAt              time.Time     `json:"checked_at"`
}

// Total returns the number of dangling references in the report
func (r *IntegrityReport) Total() int {
	return len(r.DecksWithoutOwner) + len(r.DecksWithMissingCards) + len(r.CardsWithoutCollection)
}
