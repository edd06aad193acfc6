package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/service"
)

func TestStatsService_CardsByRarityOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alpha := env.collection(t, "Alpha", "1993-08-05")

	// Mythic is inserted before Rare; equal counts still follow declaration order
	env.card(t, "c1", models.CardRarityCommon, alpha.ID)
	env.card(t, "m1", models.CardRarityMythic, alpha.ID)
	env.card(t, "r1", models.CardRarityRare, alpha.ID)
	env.card(t, "c2", models.CardRarityCommon, alpha.ID)

	rows, err := env.stats.CardsByRarity(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.RarityCount{
		{Rarity: models.CardRarityCommon, TotalCards: 2},
		{Rarity: models.CardRarityRare, TotalCards: 1},
		{Rarity: models.CardRarityMythic, TotalCards: 1},
	}, rows)
}

func TestStatsService_CardsByType(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alpha := env.collection(t, "Alpha", "1993-08-05")
	for _, req := range []service.CreateCardRequest{
		{Name: "s1", Type: models.CardTypeSpell},
		{Name: "d1", Type: models.CardTypeDragon},
		{Name: "s2", Type: models.CardTypeSpell},
		{Name: "w1", Type: models.CardTypeWarrior},
	} {
		req.Rarity = models.CardRarityCommon
		req.CollectionID = alpha.ID
		_, err := env.cards.CreateCard(ctx, &req)
		require.NoError(t, err)
	}

	rows, err := env.stats.CardsByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TypeCount{
		{Type: models.CardTypeSpell, TotalCards: 2},
		{Type: models.CardTypeDragon, TotalCards: 1},
		{Type: models.CardTypeWarrior, TotalCards: 1},
	}, rows)
}

func TestStatsService_DecksByFormat(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.deck(t, "one", alice.ID)
	env.deck(t, "two", alice.ID)
	_, err := env.decks.CreateDeck(ctx, &service.CreateDeckRequest{Name: "three", Format: models.DeckFormatModern, OwnerID: bob.ID})
	require.NoError(t, err)

	global, err := env.stats.DecksByFormat(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.DeckFormat]int64{models.DeckFormatStandard: 2, models.DeckFormatModern: 1}, global)

	mine, err := env.stats.UserDecksByFormat(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.DeckFormat]int64{models.DeckFormatStandard: 2}, mine)

	_, err = env.stats.UserDecksByFormat(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStatsService_CollectionReports(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mirage := env.collection(t, "Mirage", "1996-10-08")
	alpha := env.collection(t, "Alpha", "1993-08-05")
	beta := env.collection(t, "Beta", "1993-10-04")
	env.cardSet(t, "alpha", 1, alpha.ID)
	env.cardSet(t, "mirage", 3, mirage.ID)

	byYear, err := env.stats.CollectionsByYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.YearCount{{Year: 1993, Total: 2}, {Year: 1996, Total: 1}}, byYear)

	perCollection, err := env.stats.CardsPerCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CollectionCardCount{
		{CollectionID: mirage.ID, CollectionName: "Mirage", TotalCards: 3},
		{CollectionID: alpha.ID, CollectionName: "Alpha", TotalCards: 1},
	}, perCollection)

	withCards, err := env.stats.CollectionsWithCardCount(ctx)
	require.NoError(t, err)
	require.Len(t, withCards, 3)
	counts := map[string]int64{}
	for _, row := range withCards {
		counts[row.CollectionID] = row.TotalCards
	}
	assert.Equal(t, map[string]int64{mirage.ID: 3, alpha.ID: 1, beta.ID: 0}, counts)
}

func TestStatsService_Overview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alpha := env.collection(t, "Alpha", "1993-08-05")
	empty := env.collection(t, "Empty", "1994-01-01")
	env.cardSet(t, "alpha", 2, alpha.ID)
	env.deck(t, "deck", env.user(t, "alice").ID)

	overview, err := env.stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.RarityCount{{Rarity: models.CardRarityCommon, TotalCards: 2}}, overview.CardsByRarity)
	assert.Equal(t, int64(1), overview.DecksByFormat[models.DeckFormatStandard])
	assert.Len(t, overview.CollectionsByYear, 2)
	assert.Len(t, overview.CardsPerCollection, 1)
	assert.ElementsMatch(t, []models.CollectionCardCount{
		{CollectionID: alpha.ID, CollectionName: "Alpha", TotalCards: 2},
		{CollectionID: empty.ID, CollectionName: "Empty", TotalCards: 0},
	}, overview.CollectionsWithCardCount)
	assert.False(t, overview.GeneratedAt.IsZero())
}

func TestStatsService_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.Close(ctx))

	_, err := env.stats.Overview(ctx)
	assert.ErrorIs(t, err, service.ErrStoreUnavailable)
}
