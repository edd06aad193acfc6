package service

import (
	"context"
	"log"
	"time"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
)

const (
	missingUser       = "user"
	missingCard       = "card"
	missingCollection = "collection"
)

// IntegrityService finds references left dangling by deletes. Deletes never
// cascade, so decks may point at removed users or cards and cards at removed
// collections.
type IntegrityService struct {
	store *repository.Store
}

// NewIntegrityService creates a new IntegrityService
func NewIntegrityService(store *repository.Store) *IntegrityService {
	return &IntegrityService{store: store}
}

// Audit scans every deck and card and reports the ids that no longer resolve
func (s *IntegrityService) Audit(ctx context.Context) (*models.IntegrityReport, error) {
	report := &models.IntegrityReport{
		DecksWithoutOwner:      []models.DanglingRef{},
		DecksWithMissingCards:  []models.DanglingRef{},
		CardsWithoutCollection: []models.DanglingRef{},
	}

	if err := s.auditDecks(ctx, report); err != nil {
		return nil, err
	}
	if err := s.auditCards(ctx, report); err != nil {
		return nil, err
	}

	report.CheckedAt = time.Now().UTC()
	if report.Total() > 0 {
		log.Printf("[IntegrityService] Found %d dangling references", report.Total())
	}
	return report, nil
}

func (s *IntegrityService) auditDecks(ctx context.Context, report *models.IntegrityReport) error {
	decks, _, err := s.store.Decks.List(ctx, repository.DeckFilter{}, repository.Page{})
	if err != nil {
		return storeError("list decks", err)
	}
	report.DecksScanned = len(decks)

	ownerIDs := make([]string, 0, len(decks))
	var cardIDs []string
	for _, deck := range decks {
		ownerIDs = append(ownerIDs, deck.OwnerID)
		cardIDs = append(cardIDs, deck.CardIDs...)
	}

	owners, err := s.store.Users.FindByIDs(ctx, unique(ownerIDs))
	if err != nil {
		return storeError("find users", err)
	}
	knownOwners := make(map[string]struct{}, len(owners))
	for _, u := range owners {
		knownOwners[u.ID] = struct{}{}
	}

	cards, err := s.store.Cards.FindByIDs(ctx, unique(cardIDs))
	if err != nil {
		return storeError("find cards", err)
	}
	knownCards := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		knownCards[c.ID] = struct{}{}
	}

	for _, deck := range decks {
		if _, ok := knownOwners[deck.OwnerID]; !ok {
			report.DecksWithoutOwner = append(report.DecksWithoutOwner, models.DanglingRef{
				EntityID: deck.ID, EntityName: deck.Name, MissingKind: missingUser, MissingID: deck.OwnerID,
			})
		}
		for _, cardID := range deck.CardIDs {
			if _, ok := knownCards[cardID]; !ok {
				report.DecksWithMissingCards = append(report.DecksWithMissingCards, models.DanglingRef{
					EntityID: deck.ID, EntityName: deck.Name, MissingKind: missingCard, MissingID: cardID,
				})
			}
		}
	}
	return nil
}

func (s *IntegrityService) auditCards(ctx context.Context, report *models.IntegrityReport) error {
	cards, _, err := s.store.Cards.List(ctx, repository.CardFilter{}, repository.Page{})
	if err != nil {
		return storeError("list cards", err)
	}
	report.CardsScanned = len(cards)

	collectionIDs := make([]string, 0, len(cards))
	for _, card := range cards {
		collectionIDs = append(collectionIDs, card.CollectionID)
	}
	collections, err := s.store.Collections.FindByIDs(ctx, unique(collectionIDs))
	if err != nil {
		return storeError("find collections", err)
	}
	known := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		known[c.ID] = struct{}{}
	}

	for _, card := range cards {
		if _, ok := known[card.CollectionID]; !ok {
			report.CardsWithoutCollection = append(report.CardsWithoutCollection, models.DanglingRef{
				EntityID: card.ID, EntityName: card.Name, MissingKind: missingCollection, MissingID: card.CollectionID,
			})
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
