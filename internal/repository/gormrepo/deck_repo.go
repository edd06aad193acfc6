package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"gorm.io/gorm"
)

// DeckRepository handles deck data access
type DeckRepository struct {
	db *gorm.DB
}

// NewDeckRepository creates a new DeckRepository
func NewDeckRepository(db *gorm.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// Create inserts a deck and assigns its id
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	m := deckToModel(deck)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	deck.ID = m.ID
	deck.CreatedAt = m.CreatedAt
	return nil
}

// GetByID retrieves a deck by ID
func (r *DeckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	var m DeckModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return deckFromModel(&m), nil
}

// ExistsByOwnerAndName reports whether owner already has a deck named name
func (r *DeckRepository) ExistsByOwnerAndName(ctx context.Context, ownerID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DeckModel{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error
	return count > 0, err
}

func (r *DeckRepository) filtered(ctx context.Context, filter repository.DeckFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&DeckModel{})
	if filter.NameQuery != "" {
		q = q.Where(nameLikeClause, nameLike(filter.NameQuery))
	}
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Format != "" {
		q = q.Where("format = ?", string(filter.Format))
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", filter.CreatedTo.UTC())
	}
	return q
}

// List retrieves decks matching filter, newest first
func (r *DeckRepository) List(ctx context.Context, filter repository.DeckFilter, page repository.Page) ([]models.Deck, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DeckModel
	q := r.filtered(ctx, filter).Order("created_at DESC").Order("id ASC")
	if err := paginate(q, page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	decks := make([]models.Deck, 0, len(rows))
	for i := range rows {
		decks = append(decks, *deckFromModel(&rows[i]))
	}
	return decks, total, nil
}

// Count returns the number of decks matching filter
func (r *DeckRepository) Count(ctx context.Context, filter repository.DeckFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}

// Update saves name, format and card list of an existing deck in one statement
func (r *DeckRepository) Update(ctx context.Context, deck *models.Deck) error {
	m := deckToModel(deck)
	result := r.db.WithContext(ctx).Model(&DeckModel{}).Where("id = ?", m.ID).
		Select("name", "format", "card_ids").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a deck by ID
func (r *DeckRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&DeckModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
