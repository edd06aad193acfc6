package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
)

const (
	minReleaseYear  = 1900
	maxReleaseYear  = 2100
	minSearchLength = 2
)

// CollectionService handles collection operations
type CollectionService struct {
	collectionRepo repository.CollectionRepository
	cardRepo       repository.CardRepository
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(collectionRepo repository.CollectionRepository, cardRepo repository.CardRepository) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		cardRepo:       cardRepo,
	}
}

// CreateCollectionRequest represents the create collection request
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	ReleaseDate string `json:"release_date" binding:"required"`
}

// UpdateCollectionRequest represents a partial collection update
type UpdateCollectionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	ReleaseDate *string `json:"release_date"`
}

// ParseReleaseDate accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp and returns midnight UTC of that day
func ParseReleaseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalid("release_date %q is not a date", value)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// CreateCollection creates a new collection
func (s *CollectionService) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*models.Collection, error) {
	name, err := cleanName("name", req.Name)
	if err != nil {
		return nil, err
	}
	releaseDate, err := ParseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}

	collection := &models.Collection{
		Name:        name,
		ReleaseDate: releaseDate,
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, storeError("create collection", err)
	}

	log.Printf("[CollectionService] Created collection %s (%s)", collection.ID, collection.Name)
	return collection, nil
}

// GetCollection retrieves a collection by ID
func (s *CollectionService) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("collection", id, err)
	}
	return collection, nil
}

// ListCollections retrieves collections with pagination
func (s *CollectionService) ListCollections(ctx context.Context, page, pageSize int) ([]models.Collection, int64, error) {
	return s.list(ctx, repository.CollectionFilter{}, page, pageSize)
}

// SearchCollections finds collections whose name contains query, ignoring case
func (s *CollectionService) SearchCollections(ctx context.Context, query string, page, pageSize int) ([]models.Collection, int64, error) {
	if len(strings.TrimSpace(query)) < minSearchLength {
		return nil, 0, invalid("query must be at least %d characters", minSearchLength)
	}
	return s.list(ctx, repository.CollectionFilter{NameQuery: query}, page, pageSize)
}

// CollectionsByYear lists collections released during year
func (s *CollectionService) CollectionsByYear(ctx context.Context, year, page, pageSize int) ([]models.Collection, int64, error) {
	if year < minReleaseYear || year > maxReleaseYear {
		return nil, 0, invalid("year must be between %d and %d", minReleaseYear, maxReleaseYear)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	return s.list(ctx, repository.CollectionFilter{ReleasedFrom: &from, ReleasedTo: &to}, page, pageSize)
}

func (s *CollectionService) list(ctx context.Context, filter repository.CollectionFilter, page, pageSize int) ([]models.Collection, int64, error) {
	collections, total, err := s.collectionRepo.List(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, 0, storeError("list collections", err)
	}
	return collections, total, nil
}

// CountCollections returns the number of collections
func (s *CollectionService) CountCollections(ctx context.Context) (int64, error) {
	total, err := s.collectionRepo.Count(ctx)
	if err != nil {
		return 0, storeError("count collections", err)
	}
	return total, nil
}

// ListCollectionCards lists the cards of an existing collection
func (s *CollectionService) ListCollectionCards(ctx context.Context, id string, page, pageSize int) ([]models.Card, int64, error) {
	if _, err := s.GetCollection(ctx, id); err != nil {
		return nil, 0, err
	}
	cards, total, err := s.cardRepo.List(ctx, repository.CardFilter{CollectionID: id}, pageOf(page, pageSize))
	if err != nil {
		return nil, 0, storeError("list cards", err)
	}
	return cards, total, nil
}

// UpdateCollection applies the supplied fields to an existing collection
func (s *CollectionService) UpdateCollection(ctx context.Context, id string, req *UpdateCollectionRequest) (*models.Collection, error) {
	collection, err := s.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name == nil && req.ReleaseDate == nil {
		return nil, ErrEmptyUpdate
	}

	if req.Name != nil {
		name, err := cleanName("name", *req.Name)
		if err != nil {
			return nil, err
		}
		collection.Name = name
	}
	if req.ReleaseDate != nil {
		releaseDate, err := ParseReleaseDate(*req.ReleaseDate)
		if err != nil {
			return nil, err
		}
		collection.ReleaseDate = releaseDate
	}

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("collection", id)
		}
		return nil, storeError("update collection", err)
	}
	return collection, nil
}

// DeleteCollection removes a collection. Cards referencing it are kept.
func (s *CollectionService) DeleteCollection(ctx context.Context, id string) error {
	if err := s.collectionRepo.Delete(ctx, id); err != nil {
		return lookupError("collection", id, err)
	}
	log.Printf("[CollectionService] Deleted collection %s", id)
	return nil
}
