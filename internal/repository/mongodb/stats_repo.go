package mongodb

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsRepository computes catalog reports with aggregation pipelines
type StatsRepository struct {
	cards       *mongo.Collection
	collections *mongo.Collection
	decks       *mongo.Collection
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{
		cards:       db.Collection(cardsCollection),
		collections: db.Collection(collectionsCollection),
		decks:       db.Collection(decksCollection),
	}
}

// countByPipeline groups documents by field and counts them, largest group first
func countByPipeline(field string, match bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	)
}

// collectionsByYearPipeline groups collections by the year of release_date
func collectionsByYearPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$year", Value: "$release_date"}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// cardsPerCollectionPipeline counts cards per collection id and joins the
// collection name. $unwind drops groups whose collection no longer exists.
func cardsPerCollectionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$collection_id"},
			{Key: "total_cards", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "collection"},
		}}},
		bson.D{{Key: "$unwind", Value: "$collection"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "collection_id", Value: "$_id"},
			{Key: "collection_name", Value: "$collection.name"},
			{Key: "total_cards", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total_cards", Value: -1}, {Key: "collection_name", Value: 1}}}},
	}
}

// collectionsWithCardCountPipeline joins every collection to its cards,
// keeping collections that have none
func collectionsWithCardCountPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: cardsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "collection_id"},
			{Key: "as", Value: "cards"},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "collection_id", Value: "$_id"},
			{Key: "collection_name", Value: "$name"},
			{Key: "total_cards", Value: bson.D{{Key: "$size", Value: "$cards"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "collection_name", Value: 1}, {Key: "collection_id", Value: 1}}}},
	}
}

type groupRow struct {
	Key   string `bson:"_id"`
	Total int64  `bson:"total"`
}

type collectionCountRow struct {
	CollectionID   primitive.ObjectID `bson:"collection_id"`
	CollectionName string             `bson:"collection_name"`
	TotalCards     int64              `bson:"total_cards"`
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CardsByRarity counts cards per rarity
func (r *StatsRepository) CardsByRarity(ctx context.Context) ([]models.RarityCount, error) {
	rows, err := aggregate[groupRow](ctx, r.cards, countByPipeline("rarity", nil))
	if err != nil {
		return nil, err
	}
	result := make([]models.RarityCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.RarityCount{Rarity: models.CardRarity(row.Key), TotalCards: row.Total})
	}
	return result, nil
}

// CardsByType counts cards per type
func (r *StatsRepository) CardsByType(ctx context.Context) ([]models.TypeCount, error) {
	rows, err := aggregate[groupRow](ctx, r.cards, countByPipeline("type", nil))
	if err != nil {
		return nil, err
	}
	result := make([]models.TypeCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.TypeCount{Type: models.CardType(row.Key), TotalCards: row.Total})
	}
	return result, nil
}

// DecksByFormat counts decks per format, optionally for a single owner
func (r *StatsRepository) DecksByFormat(ctx context.Context, ownerID string) ([]models.FormatCount, error) {
	var match bson.D
	if ownerID != "" {
		oid, ok := parseID(ownerID)
		if !ok {
			return []models.FormatCount{}, nil
		}
		match = bson.D{{Key: "owner_id", Value: oid}}
	}

	rows, err := aggregate[groupRow](ctx, r.decks, countByPipeline("format", match))
	if err != nil {
		return nil, err
	}
	result := make([]models.FormatCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.FormatCount{Format: models.DeckFormat(row.Key), Total: row.Total})
	}
	return result, nil
}

// CollectionsByYear counts collections per release year, oldest first
func (r *StatsRepository) CollectionsByYear(ctx context.Context) ([]models.YearCount, error) {
	rows, err := aggregate[struct {
		Year  int   `bson:"_id"`
		Total int64 `bson:"total"`
	}](ctx, r.collections, collectionsByYearPipeline())
	if err != nil {
		return nil, err
	}
	result := make([]models.YearCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.YearCount{Year: row.Year, Total: row.Total})
	}
	return result, nil
}

func toCollectionCounts(rows []collectionCountRow) []models.CollectionCardCount {
	result := make([]models.CollectionCardCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.CollectionCardCount{
			CollectionID:   row.CollectionID.Hex(),
			CollectionName: row.CollectionName,
			TotalCards:     row.TotalCards,
		})
	}
	return result
}

// CardsPerCollection counts cards per existing collection, busiest first
func (r *StatsRepository) CardsPerCollection(ctx context.Context) ([]models.CollectionCardCount, error) {
	rows, err := aggregate[collectionCountRow](ctx, r.cards, cardsPerCollectionPipeline())
	if err != nil {
		return nil, err
	}
	return toCollectionCounts(rows), nil
}

// CollectionsWithCardCount reports every collection with its card count
func (r *StatsRepository) CollectionsWithCardCount(ctx context.Context) ([]models.CollectionCardCount, error) {
	rows, err := aggregate[collectionCountRow](ctx, r.collections, collectionsWithCardCountPipeline())
	if err != nil {
		return nil, err
	}
	return toCollectionCounts(rows), nil
}
