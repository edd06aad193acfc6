package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcg-catalog/internal/handler"
	"github.com/tcg-catalog/internal/repository"
	"github.com/tcg-catalog/internal/repository/gormrepo"
	"github.com/tcg-catalog/internal/service"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type testServer struct {
	router *gin.Engine
	store  *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gormrepo.Open(gormrepo.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, gormrepo.Migrate(context.Background(), db))

	store := gormrepo.NewStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	users := service.NewUserService(store.Users)
	collections := service.NewCollectionService(store.Collections, store.Cards)
	cards := service.NewCardService(store.Cards, store.Collections)
	decks := service.NewDeckService(store.Decks, store.Users, store.Cards)
	stats := service.NewStatsService(store.Stats, store.Users)
	integrity := service.NewIntegrityService(store)

	router := gin.New()
	handler.NewHealthHandler(store, nil, handler.BuildInfo{Version: "test"}).RegisterRoutes(router)
	v1 := router.Group("/api/v1")
	handler.NewUserHandler(users, decks, stats).RegisterRoutes(v1)
	handler.NewCollectionHandler(collections, stats).RegisterRoutes(v1)
	handler.NewCardHandler(cards, stats).RegisterRoutes(v1)
	handler.NewDeckHandler(decks, stats).RegisterRoutes(v1)
	handler.NewStatsHandler(stats, integrity).RegisterRoutes(v1)

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decode unwraps the response envelope into out and returns the envelope code
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) int {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Code
}

type idOnly struct {
	ID string `json:"id"`
}

func (s *testServer) create(t *testing.T, path string, body any) string {
	t.Helper()
	w := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out idOnly
	decode(t, w, &out)
	require.NotEmpty(t, out.ID)
	return out.ID
}

func (s *testServer) seedCatalog(t *testing.T) (userID, collectionID string, cardIDs []string) {
	t.Helper()
	userID = s.create(t, "/api/v1/users", gin.H{"name": "Ash", "email": "ash@example.com", "password": "pikachu1"})
	collectionID = s.create(t, "/api/v1/collections", gin.H{"name": "Base Set", "release_date": "1999-01-09"})
	for _, card := range []gin.H{
		{"name": "Blue-Eyes", "type": "Dragon", "rarity": "Mythic", "collection_id": collectionID},
		{"name": "Dark Magician", "type": "Magician", "rarity": "Rare", "collection_id": collectionID},
		{"name": "Kuriboh", "type": "Warrior", "rarity": "Common", "collection_id": collectionID},
	} {
		cardIDs = append(cardIDs, s.create(t, "/api/v1/cards", card))
	}
	return userID, collectionID, cardIDs
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Redis   string `json:"redis"`
		Store   struct {
			Driver string `json:"driver"`
			Status string `json:"status"`
		} `json:"store"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
	assert.Equal(t, "disabled", body.Redis)
	assert.Equal(t, "sqlite", body.Store.Driver)
	assert.Equal(t, "ok", body.Store.Status)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "/api/v1/users", gin.H{"name": "Ash", "email": "ash@example.com", "password": "pikachu1"})

	t.Run("password hash is never serialized", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/users", gin.H{"name": "Other", "email": "ash@example.com", "password": "secret12"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, -1004, decode(t, w, nil))
	})

	t.Run("invalid body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/users", gin.H{"name": "A", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/users/"+id, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update name", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/users/"+id, gin.H{"name": "Ash Ketchum"})
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Name string `json:"name"`
		}
		decode(t, w, &out)
		assert.Equal(t, "Ash Ketchum", out.Name)
	})

	t.Run("list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users?page=1&page_size=500", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out page[idOnly]
		decode(t, w, &out)
		assert.Equal(t, int64(1), out.Total)
		assert.Equal(t, 100, out.PageSize)
		assert.Equal(t, 1, out.TotalPages)
	})

	t.Run("delete then not found", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/users/"+id, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/users/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, -1003, decode(t, w, nil))
	})
}

func TestCollectionEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, collectionID, _ := s.seedCatalog(t)
	s.create(t, "/api/v1/collections", gin.H{"name": "Jungle", "release_date": "1999-06-16"})
	s.create(t, "/api/v1/collections", gin.H{"name": "Neo Genesis", "release_date": "2000-12-16"})

	w := s.do(t, http.MethodGet, "/api/v1/collections/filter/by-year?year=1999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byYear page[idOnly]
	decode(t, w, &byYear)
	assert.Equal(t, int64(2), byYear.Total)

	w = s.do(t, http.MethodGet, "/api/v1/collections/filter/by-year?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/collections/filter/by-year?year=1800", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/collections/search?query=J", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/collections/search?query=jun", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var search page[idOnly]
	decode(t, w, &search)
	assert.Equal(t, int64(1), search.Total)

	w = s.do(t, http.MethodGet, "/api/v1/collections/count", nil)
	var count struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &count)
	assert.Equal(t, int64(3), count.Total)

	w = s.do(t, http.MethodGet, "/api/v1/collections/"+collectionID+"/cards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cards page[idOnly]
	decode(t, w, &cards)
	assert.Equal(t, int64(3), cards.Total)

	w = s.do(t, http.MethodGet, "/api/v1/collections/stats/with-cards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var withCards []struct {
		CollectionName string `json:"collection_name"`
		TotalCards     int64  `json:"total_cards"`
	}
	decode(t, w, &withCards)
	assert.Len(t, withCards, 3)

	w = s.do(t, http.MethodPost, "/api/v1/collections", gin.H{"name": "   X   ", "release_date": "2024-01-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/collections/"+collectionID, gin.H{"release_date": "not-a-date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/collections/"+collectionID, gin.H{"release_date": "1999-01-10"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCardEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, collectionID, cardIDs := s.seedCatalog(t)

	t.Run("missing collection", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/cards", gin.H{"name": "Orphan", "type": "Spell", "rarity": "Common", "collection_id": "missing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate name", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/cards", gin.H{"name": "Kuriboh", "type": "Spell", "rarity": "Common", "collection_id": collectionID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown rarity", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/cards", gin.H{"name": "Odd", "type": "Spell", "rarity": "Legendary", "collection_id": collectionID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("detail embeds collection", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cards/"+cardIDs[0], nil)
		require.Equal(t, http.StatusOK, w.Code)
		var detail struct {
			Name       string `json:"name"`
			Collection *struct {
				Name string `json:"name"`
			} `json:"collection"`
		}
		decode(t, w, &detail)
		assert.Equal(t, "Blue-Eyes", detail.Name)
		require.NotNil(t, detail.Collection)
		assert.Equal(t, "Base Set", detail.Collection.Name)
	})

	t.Run("search by name segment", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cards/search/MAGIC", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out page[idOnly]
		decode(t, w, &out)
		require.Len(t, out.Items, 1)
		assert.Equal(t, cardIDs[1], out.Items[0].ID)
	})

	t.Run("suggest", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cards/suggest?q=kurbo", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []service.CardSuggestion
		decode(t, w, &out)
		require.NotEmpty(t, out)
		assert.Equal(t, "Kuriboh", out[0].Name)
	})

	t.Run("stats by rarity", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cards/stats/by-rarity", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []struct {
			Rarity     string `json:"rarity"`
			TotalCards int64  `json:"total_cards"`
		}
		decode(t, w, &out)
		assert.Len(t, out, 3)
	})

	t.Run("by collection", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/cards/collection/"+collectionID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = s.do(t, http.MethodGet, "/api/v1/cards/collection/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/cards/"+cardIDs[2], nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, http.MethodDelete, "/api/v1/cards/"+cardIDs[2], nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeckEndpoints(t *testing.T) {
	s := newTestServer(t)
	userID, _, cardIDs := s.seedCatalog(t)

	deckID := s.create(t, "/api/v1/decks", gin.H{"name": "Dragons", "format": "Modern", "owner_id": userID})

	w := s.do(t, http.MethodPost, "/api/v1/decks", gin.H{"name": "Dragons", "format": "Pauper", "owner_id": userID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/decks", gin.H{"name": "Ghost", "format": "Modern", "owner_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("add cards keeps order", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/decks/"+deckID+"/add_cards", gin.H{"card_ids": []string{cardIDs[2], cardIDs[0]}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = s.do(t, http.MethodGet, "/api/v1/decks/"+deckID+"/cards", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out page[idOnly]
		decode(t, w, &out)
		require.Len(t, out.Items, 2)
		assert.Equal(t, cardIDs[2], out.Items[0].ID)
		assert.Equal(t, cardIDs[0], out.Items[1].ID)
	})

	t.Run("batch with a duplicate changes nothing", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/decks/"+deckID+"/add_cards", gin.H{"card_ids": []string{cardIDs[1], cardIDs[0]}})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/decks/"+deckID, nil)
		var deck struct {
			CardIDs []string `json:"card_ids"`
		}
		decode(t, w, &deck)
		assert.Equal(t, []string{cardIDs[2], cardIDs[0]}, deck.CardIDs)
	})

	t.Run("remove card", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/decks/"+deckID+"/remove_card/"+cardIDs[2], nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/decks/"+deckID+"/remove_card/"+cardIDs[2], nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("filters", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/decks/by-format/Modern", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var byFormat page[idOnly]
		decode(t, w, &byFormat)
		assert.Equal(t, int64(1), byFormat.Total)

		w = s.do(t, http.MethodGet, "/api/v1/decks/by-format/Vintage", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/decks/by-date?start=2000-01-01&end=2999-12-31", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var byDate page[idOnly]
		decode(t, w, &byDate)
		assert.Equal(t, int64(1), byDate.Total)

		w = s.do(t, http.MethodGet, "/api/v1/decks/by-date?start=yesterday&end=2999-12-31", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/decks/search?query=drag", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user decks", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/"+userID+"/decks/count", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var count struct {
			Total int64 `json:"total"`
		}
		decode(t, w, &count)
		assert.Equal(t, int64(1), count.Total)

		w = s.do(t, http.MethodGet, "/api/v1/users/"+userID+"/decks/count-by-format", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var byFormat map[string]int64
		decode(t, w, &byFormat)
		assert.Equal(t, int64(1), byFormat["Modern"])
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/decks/"+deckID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, http.MethodGet, "/api/v1/decks/"+deckID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOverviewAndIntegrity(t *testing.T) {
	s := newTestServer(t)
	userID, _, cardIDs := s.seedCatalog(t)
	deckID := s.create(t, "/api/v1/decks", gin.H{"name": "Mixed", "format": "Standard", "owner_id": userID})
	w := s.do(t, http.MethodPost, "/api/v1/decks/"+deckID+"/add_cards", gin.H{"card_ids": cardIDs[:2]})
	require.Equal(t, http.StatusOK, w.Code)

	// deleting a referenced card leaves a dangling id behind
	w = s.do(t, http.MethodDelete, "/api/v1/cards/"+cardIDs[0], nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview struct {
		DecksByFormat            map[string]int64 `json:"decks_by_format"`
		CollectionsWithCardCount []struct {
			TotalCards int64 `json:"total_cards"`
		} `json:"collections_with_card_count"`
	}
	decode(t, w, &overview)
	assert.Equal(t, int64(1), overview.DecksByFormat["Standard"])
	require.Len(t, overview.CollectionsWithCardCount, 1)
	assert.Equal(t, int64(2), overview.CollectionsWithCardCount[0].TotalCards)

	w = s.do(t, http.MethodGet, "/api/v1/integrity/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		DecksWithMissingCards []struct {
			EntityID  string `json:"entity_id"`
			MissingID string `json:"missing_id"`
		} `json:"decks_with_missing_cards"`
	}
	decode(t, w, &report)
	require.Len(t, report.DecksWithMissingCards, 1)
	assert.Equal(t, deckID, report.DecksWithMissingCards[0].EntityID)
	assert.Equal(t, cardIDs[0], report.DecksWithMissingCards[0].MissingID)

	w = s.do(t, http.MethodGet, "/api/v1/decks/"+deckID+"/cards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cards page[idOnly]
	decode(t, w, &cards)
	assert.Len(t, cards.Items, 1)
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Close(context.Background()))

	w := s.do(t, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, -1006, decode(t, w, nil))

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
