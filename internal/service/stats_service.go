package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"golang.org/x/sync/errgroup"
)

// StatsService computes read-only catalog reports. Results always reflect
// the current store contents.
type StatsService struct {
	statsRepo repository.StatsRepository
	userRepo  repository.UserRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		userRepo:  userRepo,
	}
}

// CardsByRarity counts cards per rarity, largest first. Equal counts keep
// rarity declaration order.
func (s *StatsService) CardsByRarity(ctx context.Context) ([]models.RarityCount, error) {
	rows, err := s.statsRepo.CardsByRarity(ctx)
	if err != nil {
		return nil, storeError("cards by rarity", err)
	}
	slices.SortStableFunc(rows, func(a, b models.RarityCount) int {
		if c := cmp.Compare(b.TotalCards, a.TotalCards); c != 0 {
			return c
		}
		return cmp.Compare(a.Rarity.Rank(), b.Rarity.Rank())
	})
	return rows, nil
}

// CardsByType counts cards per type, largest first. Equal counts keep type
// declaration order.
func (s *StatsService) CardsByType(ctx context.Context) ([]models.TypeCount, error) {
	rows, err := s.statsRepo.CardsByType(ctx)
	if err != nil {
		return nil, storeError("cards by type", err)
	}
	slices.SortStableFunc(rows, func(a, b models.TypeCount) int {
		if c := cmp.Compare(b.TotalCards, a.TotalCards); c != 0 {
			return c
		}
		return cmp.Compare(a.Type.Rank(), b.Type.Rank())
	})
	return rows, nil
}

// DecksByFormat maps each format in use to its deck count
func (s *StatsService) DecksByFormat(ctx context.Context) (map[models.DeckFormat]int64, error) {
	rows, err := s.statsRepo.DecksByFormat(ctx, "")
	if err != nil {
		return nil, storeError("decks by format", err)
	}
	return formatMap(rows), nil
}

// UserDecksByFormat maps each format to the number of decks an existing user owns in it
func (s *StatsService) UserDecksByFormat(ctx context.Context, ownerID string) (map[models.DeckFormat]int64, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, lookupError("user", ownerID, err)
	}
	rows, err := s.statsRepo.DecksByFormat(ctx, ownerID)
	if err != nil {
		return nil, storeError("decks by format", err)
	}
	return formatMap(rows), nil
}

func formatMap(rows []models.FormatCount) map[models.DeckFormat]int64 {
	result := make(map[models.DeckFormat]int64, len(rows))
	for _, row := range rows {
		result[row.Format] = row.Total
	}
	return result
}

// CollectionsByYear counts collections per release year, oldest first
func (s *StatsService) CollectionsByYear(ctx context.Context) ([]models.YearCount, error) {
	rows, err := s.statsRepo.CollectionsByYear(ctx)
	if err != nil {
		return nil, storeError("collections by year", err)
	}
	slices.SortFunc(rows, func(a, b models.YearCount) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return rows, nil
}

// CardsPerCollection counts cards per existing collection, largest first
func (s *StatsService) CardsPerCollection(ctx context.Context) ([]models.CollectionCardCount, error) {
	rows, err := s.statsRepo.CardsPerCollection(ctx)
	if err != nil {
		return nil, storeError("cards per collection", err)
	}
	slices.SortStableFunc(rows, func(a, b models.CollectionCardCount) int {
		return cmp.Compare(b.TotalCards, a.TotalCards)
	})
	return rows, nil
}

// CollectionsWithCardCount lists every collection with its card count, including empty ones
func (s *StatsService) CollectionsWithCardCount(ctx context.Context) ([]models.CollectionCardCount, error) {
	rows, err := s.statsRepo.CollectionsWithCardCount(ctx)
	if err != nil {
		return nil, storeError("collections with card count", err)
	}
	return rows, nil
}

// Overview runs every report concurrently and bundles the results
func (s *StatsService) Overview(ctx context.Context) (*models.StatsOverview, error) {
	overview := &models.StatsOverview{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		overview.CardsByRarity, err = s.CardsByRarity(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.CardsByType, err = s.CardsByType(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.DecksByFormat, err = s.DecksByFormat(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.CollectionsByYear, err = s.CollectionsByYear(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.CardsPerCollection, err = s.CardsPerCollection(ctx)
		return err
	})
	g.Go(func() (err error) {
		overview.CollectionsWithCardCount, err = s.CollectionsWithCardCount(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	overview.GeneratedAt = time.Now().UTC()
	return overview, nil
}
