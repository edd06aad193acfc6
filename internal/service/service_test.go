package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"github.com/tcg-catalog/internal/repository/gormrepo"
	"github.com/tcg-catalog/internal/service"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	store       *repository.Store
	users       *service.UserService
	collections *service.CollectionService
	cards       *service.CardService
	decks       *service.DeckService
	stats       *service.StatsService
	integrity   *service.IntegrityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gormrepo.Open(gormrepo.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, gormrepo.Migrate(context.Background(), db))

	store := gormrepo.NewStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return &testEnv{
		store:       store,
		users:       service.NewUserService(store.Users),
		collections: service.NewCollectionService(store.Collections, store.Cards),
		cards:       service.NewCardService(store.Cards, store.Collections),
		decks:       service.NewDeckService(store.Decks, store.Users, store.Cards),
		stats:       service.NewStatsService(store.Stats, store.Users),
		integrity:   service.NewIntegrityService(store),
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &service.CreateUserRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) collection(t *testing.T, name, releaseDate string) *models.Collection {
	t.Helper()
	c, err := e.collections.CreateCollection(context.Background(), &service.CreateCollectionRequest{
		Name:        name,
		ReleaseDate: releaseDate,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) card(t *testing.T, name string, rarity models.CardRarity, collectionID string) *models.Card {
	t.Helper()
	c, err := e.cards.CreateCard(context.Background(), &service.CreateCardRequest{
		Name:         name,
		Type:         models.CardTypeWarrior,
		Rarity:       rarity,
		CollectionID: collectionID,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) deck(t *testing.T, name, ownerID string) *models.Deck {
	t.Helper()
	d, err := e.decks.CreateDeck(context.Background(), &service.CreateDeckRequest{
		Name:    name,
		Format:  models.DeckFormatStandard,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return d
}

// cards creates n common cards named prefix-1..prefix-n
func (e *testEnv) cardSet(t *testing.T, prefix string, n int, collectionID string) []*models.Card {
	t.Helper()
	cards := make([]*models.Card, 0, n)
	for i := 1; i <= n; i++ {
		cards = append(cards, e.card(t, fmt.Sprintf("%s-%d", prefix, i), models.CardRarityCommon, collectionID))
	}
	return cards
}
