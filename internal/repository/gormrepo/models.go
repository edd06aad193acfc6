package gormrepo

import (
	"time"

	"github.com/tcg-catalog/internal/models"
)

// UserModel is the users table row
type UserModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:100;not null"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

func userFromModel(m *UserModel) *models.User {
	return &models.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func userToModel(u *models.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// CollectionModel is the collections table row
type CollectionModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:100;not null;index"`
	ReleaseDate time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for CollectionModel
func (CollectionModel) TableName() string {
	return "collections"
}

func collectionFromModel(m *CollectionModel) *models.Collection {
	return &models.Collection{
		ID:          m.ID,
		Name:        m.Name,
		ReleaseDate: m.ReleaseDate.UTC(),
	}
}

func collectionToModel(c *models.Collection) *CollectionModel {
	return &CollectionModel{
		ID:          c.ID,
		Name:        c.Name,
		ReleaseDate: c.ReleaseDate.UTC(),
	}
}

// CardModel is the cards table row
type CardModel struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Name         string  `gorm:"uniqueIndex;size:100;not null"`
	Type         string  `gorm:"size:20;not null;index"`
	Rarity       string  `gorm:"size:20;not null;index"`
	Text         *string `gorm:"type:text"`
	CollectionID string  `gorm:"size:36;not null;index"`
}

// TableName specifies the table name for CardModel
func (CardModel) TableName() string {
	return "cards"
}

func cardFromModel(m *CardModel) *models.Card {
	return &models.Card{
		ID:           m.ID,
		Name:         m.Name,
		Type:         models.CardType(m.Type),
		Rarity:       models.CardRarity(m.Rarity),
		Text:         m.Text,
		CollectionID: m.CollectionID,
	}
}

func cardToModel(c *models.Card) *CardModel {
	return &CardModel{
		ID:           c.ID,
		Name:         c.Name,
		Type:         string(c.Type),
		Rarity:       string(c.Rarity),
		Text:         c.Text,
		CollectionID: c.CollectionID,
	}
}

// DeckModel is the decks table row. The card list is stored as a JSON array,
// mirroring the document layout of the mongodb backend.
type DeckModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_decks_owner_name,priority:2"`
	Format    string    `gorm:"size:20;not null;index"`
	OwnerID   string    `gorm:"size:36;not null;uniqueIndex:idx_decks_owner_name,priority:1"`
	CardIDs   []string  `gorm:"serializer:json;type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for DeckModel
func (DeckModel) TableName() string {
	return "decks"
}

func deckFromModel(m *DeckModel) *models.Deck {
	cardIDs := m.CardIDs
	if cardIDs == nil {
		cardIDs = []string{}
	}
	return &models.Deck{
		ID:        m.ID,
		Name:      m.Name,
		Format:    models.DeckFormat(m.Format),
		CreatedAt: m.CreatedAt,
		OwnerID:   m.OwnerID,
		CardIDs:   cardIDs,
	}
}

func deckToModel(d *models.Deck) *DeckModel {
	cardIDs := d.CardIDs
	if cardIDs == nil {
		cardIDs = []string{}
	}
	return &DeckModel{
		ID:        d.ID,
		Name:      d.Name,
		Format:    string(d.Format),
		OwnerID:   d.OwnerID,
		CardIDs:   cardIDs,
		CreatedAt: d.CreatedAt,
	}
}
