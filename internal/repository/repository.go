package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tcg-catalog/internal/models"
)

var (
	// ErrNotFound is returned when an id does not resolve to a stored record
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a write violates a unique index
	ErrDuplicateKey = errors.New("duplicate key")
)

// Page selects a window of a listing. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// CollectionFilter narrows collection listings
type CollectionFilter struct {
	// NameQuery matches names containing the text, case-insensitively
	NameQuery    string
	ReleasedFrom *time.Time // inclusive
	ReleasedTo   *time.Time // exclusive
}

// CardFilter narrows card listings
type CardFilter struct {
	NameQuery    string
	CollectionID string
}

// DeckFilter narrows deck listings
type DeckFilter struct {
	NameQuery   string
	OwnerID     string
	Format      models.DeckFormat
	CreatedFrom *time.Time // inclusive
	CreatedTo   *time.Time // inclusive
}

// UserRepository handles user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context, page Page) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CollectionRepository handles collection data access
type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error)
	List(ctx context.Context, filter CollectionFilter, page Page) ([]models.Collection, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id string) error
}

// CardRepository handles card data access
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// FindByIDs returns the cards that exist among ids, in no particular order.
	// Ids that do not resolve are silently skipped.
	FindByIDs(ctx context.Context, ids []string) ([]models.Card, error)
	List(ctx context.Context, filter CardFilter, page Page) ([]models.Card, int64, error)
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Create(ctx context.Context, deck *models.Deck) error
	GetByID(ctx context.Context, id string) (*models.Deck, error)
	ExistsByOwnerAndName(ctx context.Context, ownerID, name string) (bool, error)
	List(ctx context.Context, filter DeckFilter, page Page) ([]models.Deck, int64, error)
	Count(ctx context.Context, filter DeckFilter) (int64, error)
	Update(ctx context.Context, deck *models.Deck) error
	Delete(ctx context.Context, id string) error
}

// StatsRepository computes aggregate reports inside the store
type StatsRepository interface {
	CardsByRarity(ctx context.Context) ([]models.RarityCount, error)
	CardsByType(ctx context.Context) ([]models.TypeCount, error)
	// DecksByFormat counts decks per format; an empty ownerID counts every deck
	DecksByFormat(ctx context.Context, ownerID string) ([]models.FormatCount, error)
	CollectionsByYear(ctx context.Context) ([]models.YearCount, error)
	// CardsPerCollection joins cards to their collection; collections without cards
	// and cards whose collection is gone are left out
	CardsPerCollection(ctx context.Context) ([]models.CollectionCardCount, error)
	// CollectionsWithCardCount reports every collection, including empty ones
	CollectionsWithCardCount(ctx context.Context) ([]models.CollectionCardCount, error)
}

// Backend is the connection underneath a Store
type Backend interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Store bundles the repositories of one storage backend
type Store struct {
	Users       UserRepository
	Collections CollectionRepository
	Cards       CardRepository
	Decks       DeckRepository
	Stats       StatsRepository

	backend Backend
	name    string
}

// NewStore creates a Store over the given repositories
func NewStore(name string, backend Backend, users UserRepository, collections CollectionRepository,
	cards CardRepository, decks DeckRepository, stats StatsRepository) *Store {
	return &Store{
		Users:       users,
		Collections: collections,
		Cards:       cards,
		Decks:       decks,
		Stats:       stats,
		backend:     backend,
		name:        name,
	}
}

// Name returns the backend name, e.g. "mongodb" or "postgres"
func (s *Store) Name() string {
	return s.name
}

// Ping checks the backend connection
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}
