package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
)

const defaultSuggestLimit = 10

// CardService handles card operations
type CardService struct {
	cardRepo       repository.CardRepository
	collectionRepo repository.CollectionRepository
}

// NewCardService creates a new CardService
func NewCardService(cardRepo repository.CardRepository, collectionRepo repository.CollectionRepository) *CardService {
	return &CardService{
		cardRepo:       cardRepo,
		collectionRepo: collectionRepo,
	}
}

// CreateCardRequest represents the create card request
type CreateCardRequest struct {
	Name         string            `json:"name" binding:"required,max=100"`
	Type         models.CardType   `json:"type" binding:"required,oneof=Dragon Warrior Magician Dinosaur Spell Mage"`
	Rarity       models.CardRarity `json:"rarity" binding:"required,oneof=Common Uncommon Rare Mythic"`
	Text         *string           `json:"text"`
	CollectionID string            `json:"collection_id" binding:"required"`
}

// UpdateCardRequest represents a partial card update
type UpdateCardRequest struct {
	Name         *string            `json:"name" binding:"omitempty,min=1,max=100"`
	Type         *models.CardType   `json:"type" binding:"omitempty,oneof=Dragon Warrior Magician Dinosaur Spell Mage"`
	Rarity       *models.CardRarity `json:"rarity" binding:"omitempty,oneof=Common Uncommon Rare Mythic"`
	Text         *string            `json:"text"`
	CollectionID *string            `json:"collection_id" binding:"omitempty,min=1"`
}

// IsEmpty reports whether no field was supplied
func (r *UpdateCardRequest) IsEmpty() bool {
	return r.Name == nil && r.Type == nil && r.Rarity == nil && r.Text == nil && r.CollectionID == nil
}

// CreateCard creates a card with a unique name inside an existing collection
func (s *CardService) CreateCard(ctx context.Context, req *CreateCardRequest) (*models.Card, error) {
	if !req.Type.IsValid() {
		return nil, invalid("unknown card type %q", req.Type)
	}
	if !req.Rarity.IsValid() {
		return nil, invalid("unknown rarity %q", req.Rarity)
	}

	// Card names are unique across the catalog
	exists, err := s.cardRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, storeError("check card name", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	if err := s.requireCollection(ctx, req.CollectionID); err != nil {
		return nil, err
	}

	card := &models.Card{
		Name:         req.Name,
		Type:         req.Type,
		Rarity:       req.Rarity,
		Text:         req.Text,
		CollectionID: req.CollectionID,
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateName
		}
		return nil, storeError("create card", err)
	}

	log.Printf("[CardService] Created card %s (%s)", card.ID, card.Name)
	return card, nil
}

func (s *CardService) requireCollection(ctx context.Context, id string) error {
	if _, err := s.collectionRepo.GetByID(ctx, id); err != nil {
		return lookupError("collection", id, err)
	}
	return nil
}

// GetCard retrieves a card by ID
func (s *CardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("card", id, err)
	}
	return card, nil
}

// GetCardDetail retrieves a card together with its collection. A collection
// that no longer exists is reported as nil rather than failing the read.
func (s *CardService) GetCardDetail(ctx context.Context, id string) (*models.CardDetail, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.CardDetail{Card: *card}
	collection, err := s.collectionRepo.GetByID(ctx, card.CollectionID)
	switch {
	case err == nil:
		detail.Collection = collection
	case errors.Is(err, repository.ErrNotFound):
		log.Printf("[CardService] Card %s references missing collection %s", card.ID, card.CollectionID)
	default:
		return nil, storeError("get collection", err)
	}
	return detail, nil
}

// ListCards retrieves cards with pagination
func (s *CardService) ListCards(ctx context.Context, page, pageSize int) ([]models.Card, int64, error) {
	return s.list(ctx, repository.CardFilter{}, page, pageSize)
}

// SearchCards finds cards whose name contains name, ignoring case
func (s *CardService) SearchCards(ctx context.Context, name string, page, pageSize int) ([]models.Card, int64, error) {
	if strings.TrimSpace(name) == "" {
		return nil, 0, invalid("name must not be empty")
	}
	return s.list(ctx, repository.CardFilter{NameQuery: name}, page, pageSize)
}

// ListCardsByCollection lists the cards of an existing collection
func (s *CardService) ListCardsByCollection(ctx context.Context, collectionID string, page, pageSize int) ([]models.Card, int64, error) {
	if err := s.requireCollection(ctx, collectionID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.CardFilter{CollectionID: collectionID}, page, pageSize)
}

func (s *CardService) list(ctx context.Context, filter repository.CardFilter, page, pageSize int) ([]models.Card, int64, error) {
	cards, total, err := s.cardRepo.List(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, 0, storeError("list cards", err)
	}
	return cards, total, nil
}

// CardSuggestion is a card name ranked against a fuzzy query
type CardSuggestion struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SuggestCards ranks card names against q with fuzzy matching, best match first
func (s *CardService) SuggestCards(ctx context.Context, q string, limit int) ([]CardSuggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q must not be empty")
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	cards, _, err := s.cardRepo.List(ctx, repository.CardFilter{}, repository.Page{})
	if err != nil {
		return nil, storeError("list cards", err)
	}

	names := make([]string, len(cards))
	for i, card := range cards {
		names[i] = card.Name
	}

	matches := fuzzy.Find(q, names)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	suggestions := make([]CardSuggestion, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, CardSuggestion{
			ID:    cards[m.Index].ID,
			Name:  m.Str,
			Score: m.Score,
		})
	}
	return suggestions, nil
}

// UpdateCard applies the supplied fields to an existing card in a single save
func (s *CardService) UpdateCard(ctx context.Context, id string, req *UpdateCardRequest) (*models.Card, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if req.Name != nil && *req.Name != card.Name {
		exists, err := s.cardRepo.ExistsByName(ctx, *req.Name)
		if err != nil {
			return nil, storeError("check card name", err)
		}
		if exists {
			return nil, ErrDuplicateName
		}
		card.Name = *req.Name
	}
	if req.Type != nil {
		if !req.Type.IsValid() {
			return nil, invalid("unknown card type %q", *req.Type)
		}
		card.Type = *req.Type
	}
	if req.Rarity != nil {
		if !req.Rarity.IsValid() {
			return nil, invalid("unknown rarity %q", *req.Rarity)
		}
		card.Rarity = *req.Rarity
	}
	if req.Text != nil {
		card.Text = req.Text
	}
	if req.CollectionID != nil {
		if err := s.requireCollection(ctx, *req.CollectionID); err != nil {
			return nil, err
		}
		card.CollectionID = *req.CollectionID
	}

	if err := s.cardRepo.Update(ctx, card); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrDuplicateName
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("card", id)
		}
		return nil, storeError("update card", err)
	}
	return card, nil
}

// DeleteCard removes a card. Decks holding it keep the id.
func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	if err := s.cardRepo.Delete(ctx, id); err != nil {
		return lookupError("card", id, err)
	}
	log.Printf("[CardService] Deleted card %s", id)
	return nil
}
