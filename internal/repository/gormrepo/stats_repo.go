package gormrepo

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"gorm.io/gorm"
)

// StatsRepository computes catalog reports with GROUP BY queries
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (r *StatsRepository) countCardsBy(ctx context.Context, column string) ([]groupCount, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&CardModel{}).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// CardsByRarity counts cards per rarity
func (r *StatsRepository) CardsByRarity(ctx context.Context) ([]models.RarityCount, error) {
	rows, err := r.countCardsBy(ctx, "rarity")
	if err != nil {
		return nil, err
	}
	result := make([]models.RarityCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.RarityCount{Rarity: models.CardRarity(row.GroupKey), TotalCards: row.Total})
	}
	return result, nil
}

// CardsByType counts cards per type
func (r *StatsRepository) CardsByType(ctx context.Context) ([]models.TypeCount, error) {
	rows, err := r.countCardsBy(ctx, "type")
	if err != nil {
		return nil, err
	}
	result := make([]models.TypeCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.TypeCount{Type: models.CardType(row.GroupKey), TotalCards: row.Total})
	}
	return result, nil
}

// DecksByFormat counts decks per format, optionally for a single owner
func (r *StatsRepository) DecksByFormat(ctx context.Context, ownerID string) ([]models.FormatCount, error) {
	q := r.db.WithContext(ctx).Model(&DeckModel{})
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}

	var rows []groupCount
	err := q.Select("format AS group_key, COUNT(*) AS total").
		Group("format").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.FormatCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.FormatCount{Format: models.DeckFormat(row.GroupKey), Total: row.Total})
	}
	return result, nil
}

// yearExpr extracts the UTC release year in the given dialect
func yearExpr(dialect string) string {
	if dialect == DriverPostgres {
		// timestamptz fields are otherwise read in the session time zone
		return "CAST(EXTRACT(YEAR FROM release_date AT TIME ZONE 'UTC') AS INTEGER)"
	}
	// sqlite stores timestamps as ISO-8601 text
	return "CAST(substr(release_date, 1, 4) AS INTEGER)"
}

// CollectionsByYear counts collections per release year, oldest first
func (r *StatsRepository) CollectionsByYear(ctx context.Context) ([]models.YearCount, error) {
	var rows []struct {
		Year  int
		Total int64
	}
	expr := yearExpr(r.db.Dialector.Name())
	err := r.db.WithContext(ctx).Model(&CollectionModel{}).
		Select(expr + " AS year, COUNT(*) AS total").
		Group(expr).
		Order("year ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.YearCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.YearCount{Year: row.Year, Total: row.Total})
	}
	return result, nil
}

type collectionCountRow struct {
	CollectionID   string
	CollectionName string
	TotalCards     int64
}

func toCollectionCounts(rows []collectionCountRow) []models.CollectionCardCount {
	result := make([]models.CollectionCardCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.CollectionCardCount{
			CollectionID:   row.CollectionID,
			CollectionName: row.CollectionName,
			TotalCards:     row.TotalCards,
		})
	}
	return result
}

// CardsPerCollection counts cards per existing collection, busiest first
func (r *StatsRepository) CardsPerCollection(ctx context.Context) ([]models.CollectionCardCount, error) {
	var rows []collectionCountRow
	err := r.db.WithContext(ctx).Table("cards").
		Select("collections.id AS collection_id, collections.name AS collection_name, COUNT(cards.id) AS total_cards").
		Joins("JOIN collections ON collections.id = cards.collection_id").
		Group("collections.id, collections.name").
		Order("total_cards DESC").
		Order("collections.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCollectionCounts(rows), nil
}

// CollectionsWithCardCount reports every collection with its card count
func (r *StatsRepository) CollectionsWithCardCount(ctx context.Context) ([]models.CollectionCardCount, error) {
	var rows []collectionCountRow
	err := r.db.WithContext(ctx).Table("collections").
		Select("collections.id AS collection_id, collections.name AS collection_name, COUNT(cards.id) AS total_cards").
		Joins("LEFT JOIN cards ON cards.collection_id = collections.id").
		Group("collections.id, collections.name").
		Order("collections.name ASC").
		Order("collections.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCollectionCounts(rows), nil
}
