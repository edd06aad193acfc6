package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"gorm.io/gorm"
)

// CardRepository handles card data access
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create inserts a card and assigns its id
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	m := cardToModel(card)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	card.ID = m.ID
	return nil
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	var m CardModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return cardFromModel(&m), nil
}

// ExistsByName reports whether a card with exactly this name exists
func (r *CardRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CardModel{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// FindByIDs retrieves the cards that exist among ids
func (r *CardRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Card, error) {
	if len(ids) == 0 {
		return []models.Card{}, nil
	}
	var rows []CardModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return cardsFromModels(rows), nil
}

func (r *CardRepository) filtered(ctx context.Context, filter repository.CardFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&CardModel{})
	if filter.NameQuery != "" {
		q = q.Where(nameLikeClause, nameLike(filter.NameQuery))
	}
	if filter.CollectionID != "" {
		q = q.Where("collection_id = ?", filter.CollectionID)
	}
	return q
}

// List retrieves cards matching filter, ordered by name
func (r *CardRepository) List(ctx context.Context, filter repository.CardFilter, page repository.Page) ([]models.Card, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []CardModel
	q := r.filtered(ctx, filter).Order("name ASC")
	if err := paginate(q, page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return cardsFromModels(rows), total, nil
}

// Update saves every field of an existing card
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	m := cardToModel(card)
	result := r.db.WithContext(ctx).Model(&CardModel{}).Where("id = ?", m.ID).
		Select("name", "type", "rarity", "text", "collection_id").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a card by ID. Decks holding its id are left untouched.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CardModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func cardsFromModels(rows []CardModel) []models.Card {
	cards := make([]models.Card, 0, len(rows))
	for i := range rows {
		cards = append(cards, *cardFromModel(&rows[i]))
	}
	return cards
}
