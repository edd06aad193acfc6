package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
)

// DeckService handles deck operations and the deck/card membership rules
type DeckService struct {
	deckRepo repository.DeckRepository
	userRepo repository.UserRepository
	cardRepo repository.CardRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(deckRepo repository.DeckRepository, userRepo repository.UserRepository, cardRepo repository.CardRepository) *DeckService {
	return &DeckService{
		deckRepo: deckRepo,
		userRepo: userRepo,
		cardRepo: cardRepo,
	}
}

// CreateDeckRequest represents the create deck request
type CreateDeckRequest struct {
	Name    string            `json:"name" binding:"required,min=2,max=100"`
	Format  models.DeckFormat `json:"format" binding:"required,oneof=Standard Modern Commander Pauper"`
	OwnerID string            `json:"owner_id" binding:"required"`
}

// UpdateDeckRequest represents a partial deck update. CardIDs, when present,
// replaces the whole card list.
type UpdateDeckRequest struct {
	Name    *string            `json:"name" binding:"omitempty,min=2,max=100"`
	Format  *models.DeckFormat `json:"format" binding:"omitempty,oneof=Standard Modern Commander Pauper"`
	CardIDs *[]string          `json:"card_ids"`
}

// IsEmpty reports whether no field was supplied
func (r *UpdateDeckRequest) IsEmpty() bool {
	return r.Name == nil && r.Format == nil && r.CardIDs == nil
}

// AddCardsRequest represents a batch of cards to append to a deck
type AddCardsRequest struct {
	CardIDs []string `json:"card_ids" binding:"required,min=1"`
}

// DeckDateRange bounds a creation-date query, both ends inclusive
type DeckDateRange struct {
	Start time.Time
	End   time.Time
}

// CreateDeck creates an empty deck for an existing owner
func (s *DeckService) CreateDeck(ctx context.Context, req *CreateDeckRequest) (*models.Deck, error) {
	if !req.Format.IsValid() {
		return nil, invalid("unknown format %q", req.Format)
	}
	if err := s.requireOwner(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	name, err := cleanName("name", req.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.deckRepo.ExistsByOwnerAndName(ctx, req.OwnerID, name)
	if err != nil {
		return nil, storeError("check deck name", err)
	}
	if exists {
		return nil, ErrDuplicateDeckName
	}

	deck := &models.Deck{
		Name:      name,
		Format:    req.Format,
		CreatedAt: time.Now().UTC(),
		OwnerID:   req.OwnerID,
		CardIDs:   []string{},
	}
	if err := s.deckRepo.Create(ctx, deck); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateDeckName
		}
		return nil, storeError("create deck", err)
	}

	log.Printf("[DeckService] Created deck %s for owner %s", deck.ID, deck.OwnerID)
	return deck, nil
}

func (s *DeckService) requireOwner(ctx context.Context, ownerID string) error {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return lookupError("user", ownerID, err)
	}
	return nil
}

// GetDeck retrieves a deck by ID
func (s *DeckService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	deck, err := s.deckRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("deck", id, err)
	}
	return deck, nil
}

// ListDecks retrieves decks with pagination
func (s *DeckService) ListDecks(ctx context.Context, page, pageSize int) ([]models.Deck, int64, error) {
	return s.list(ctx, repository.DeckFilter{}, page, pageSize)
}

// ListDecksByFormat retrieves the decks built for format
func (s *DeckService) ListDecksByFormat(ctx context.Context, format models.DeckFormat, page, pageSize int) ([]models.Deck, int64, error) {
	if !format.IsValid() {
		return nil, 0, invalid("unknown format %q", format)
	}
	return s.list(ctx, repository.DeckFilter{Format: format}, page, pageSize)
}

// ListDecksByDate retrieves decks created within r
func (s *DeckService) ListDecksByDate(ctx context.Context, r DeckDateRange, page, pageSize int) ([]models.Deck, int64, error) {
	if r.End.Before(r.Start) {
		return nil, 0, invalid("end must not be before start")
	}
	return s.list(ctx, repository.DeckFilter{CreatedFrom: &r.Start, CreatedTo: &r.End}, page, pageSize)
}

// SearchDecks finds decks whose name contains query, ignoring case
func (s *DeckService) SearchDecks(ctx context.Context, query string, page, pageSize int) ([]models.Deck, int64, error) {
	if len(strings.TrimSpace(query)) < minSearchLength {
		return nil, 0, invalid("query must be at least %d characters", minSearchLength)
	}
	return s.list(ctx, repository.DeckFilter{NameQuery: query}, page, pageSize)
}

// ListUserDecks retrieves the decks of an existing user
func (s *DeckService) ListUserDecks(ctx context.Context, ownerID string, page, pageSize int) ([]models.Deck, int64, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.DeckFilter{OwnerID: ownerID}, page, pageSize)
}

func (s *DeckService) list(ctx context.Context, filter repository.DeckFilter, page, pageSize int) ([]models.Deck, int64, error) {
	decks, total, err := s.deckRepo.List(ctx, filter, pageOf(page, pageSize))
	if err != nil {
		return nil, 0, storeError("list decks", err)
	}
	return decks, total, nil
}

// CountDecks returns the number of decks
func (s *DeckService) CountDecks(ctx context.Context) (int64, error) {
	total, err := s.deckRepo.Count(ctx, repository.DeckFilter{})
	if err != nil {
		return 0, storeError("count decks", err)
	}
	return total, nil
}

// CountUserDecks returns the number of decks owned by an existing user
func (s *DeckService) CountUserDecks(ctx context.Context, ownerID string) (int64, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return 0, err
	}
	total, err := s.deckRepo.Count(ctx, repository.DeckFilter{OwnerID: ownerID})
	if err != nil {
		return 0, storeError("count decks", err)
	}
	return total, nil
}

// ListDeckCards returns the deck's cards in deck order. Ids whose card no
// longer exists are skipped.
func (s *DeckService) ListDeckCards(ctx context.Context, id string, page, pageSize int) ([]models.Card, int64, error) {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	found, err := s.cardRepo.FindByIDs(ctx, deck.CardIDs)
	if err != nil {
		return nil, 0, storeError("find cards", err)
	}
	byID := make(map[string]models.Card, len(found))
	for _, card := range found {
		byID[card.ID] = card
	}

	cards := make([]models.Card, 0, len(found))
	for _, cardID := range deck.CardIDs {
		card, ok := byID[cardID]
		if !ok {
			log.Printf("[DeckService] Deck %s references missing card %s", deck.ID, cardID)
			continue
		}
		cards = append(cards, card)
	}

	total := int64(len(cards))
	window := pageOf(page, pageSize)
	if window.Offset >= len(cards) {
		return []models.Card{}, total, nil
	}
	cards = cards[window.Offset:]
	if window.Limit > 0 && len(cards) > window.Limit {
		cards = cards[:window.Limit]
	}
	return cards, total, nil
}

// AddCardsToDeck appends cardIDs to the deck. The whole batch is validated
// in order against the deck contents before anything is written; the first
// duplicate or unknown card rejects the batch and leaves the deck unchanged.
func (s *DeckService) AddCardsToDeck(ctx context.Context, id string, req *AddCardsRequest) (*models.Deck, error) {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(deck.CardIDs)+len(req.CardIDs))
	for _, cardID := range deck.CardIDs {
		present[cardID] = struct{}{}
	}

	added := make([]string, 0, len(req.CardIDs))
	for _, cardID := range req.CardIDs {
		if _, ok := present[cardID]; ok {
			return nil, fmt.Errorf("card %s: %w", cardID, ErrDuplicateCardInDeck)
		}
		if _, err := s.cardRepo.GetByID(ctx, cardID); err != nil {
			return nil, lookupError("card", cardID, err)
		}
		present[cardID] = struct{}{}
		added = append(added, cardID)
	}

	deck.CardIDs = append(deck.CardIDs, added...)
	if err := s.save(ctx, deck); err != nil {
		return nil, err
	}

	log.Printf("[DeckService] Added %d cards to deck %s", len(added), deck.ID)
	return deck, nil
}

// RemoveCardFromDeck removes cardID from the deck
func (s *DeckService) RemoveCardFromDeck(ctx context.Context, id, cardID string) (*models.Deck, error) {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}

	idx := slices.Index(deck.CardIDs, cardID)
	if idx < 0 {
		return nil, fmt.Errorf("card %s: %w", cardID, ErrCardNotInDeck)
	}
	deck.CardIDs = slices.Delete(deck.CardIDs, idx, idx+1)

	if err := s.save(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// UpdateDeck applies the supplied fields to an existing deck in a single save
func (s *DeckService) UpdateDeck(ctx context.Context, id string, req *UpdateDeckRequest) (*models.Deck, error) {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if req.Name != nil {
		name, err := cleanName("name", *req.Name)
		if err != nil {
			return nil, err
		}
		deck.Name = name
	}
	if req.Format != nil {
		if !req.Format.IsValid() {
			return nil, invalid("unknown format %q", *req.Format)
		}
		deck.Format = *req.Format
	}
	if req.CardIDs != nil {
		cardIDs, err := s.resolveReplacement(ctx, *req.CardIDs)
		if err != nil {
			return nil, err
		}
		deck.CardIDs = cardIDs
	}

	if err := s.save(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// resolveReplacement checks that every requested id names a distinct existing
// card. Repeated ids collapse in the lookup and so fail the count check.
func (s *DeckService) resolveReplacement(ctx context.Context, cardIDs []string) ([]string, error) {
	found, err := s.cardRepo.FindByIDs(ctx, cardIDs)
	if err != nil {
		return nil, storeError("find cards", err)
	}
	if len(found) != len(cardIDs) {
		return nil, invalid("card_ids must reference %d distinct existing cards, %d resolved", len(cardIDs), len(found))
	}
	return slices.Clone(cardIDs), nil
}

func (s *DeckService) save(ctx context.Context, deck *models.Deck) error {
	if err := s.deckRepo.Update(ctx, deck); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return ErrDuplicateDeckName
		case errors.Is(err, repository.ErrNotFound):
			return notFound("deck", deck.ID)
		}
		return storeError("update deck", err)
	}
	return nil
}

// DeleteDeck removes a deck
func (s *DeckService) DeleteDeck(ctx context.Context, id string) error {
	if err := s.deckRepo.Delete(ctx, id); err != nil {
		return lookupError("deck", id, err)
	}
	log.Printf("[DeckService] Deleted deck %s", id)
	return nil
}
