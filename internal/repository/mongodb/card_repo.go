package mongodb

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CardRepository handles card data access
type CardRepository struct {
	coll *mongo.Collection
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{coll: db.Collection(cardsCollection)}
}

// Create inserts a card and assigns its id
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	doc, err := cardToDocument(card)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateError(err)
	}
	card.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc cardDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	card := doc.toModel()
	return &card, nil
}

// ExistsByName reports whether a card with exactly this name exists
func (r *CardRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "name", Value: name}})
	return count > 0, err
}

// FindByIDs retrieves the cards that exist among ids
func (r *CardRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Card, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return []models.Card{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, err
	}
	return decodeCards(ctx, cursor)
}

// cardQuery translates filter into a find document. ok is false when the
// filter names a collection id that cannot exist.
func cardQuery(filter repository.CardFilter) (query bson.D, ok bool) {
	query = bson.D{}
	if filter.NameQuery != "" {
		query = append(query, bson.E{Key: "name", Value: nameRegex(filter.NameQuery)})
	}
	if filter.CollectionID != "" {
		oid, valid := parseID(filter.CollectionID)
		if !valid {
			return nil, false
		}
		query = append(query, bson.E{Key: "collection_id", Value: oid})
	}
	return query, true
}

// List retrieves cards matching filter, ordered by name
func (r *CardRepository) List(ctx context.Context, filter repository.CardFilter, page repository.Page) ([]models.Card, int64, error) {
	query, ok := cardQuery(filter)
	if !ok {
		return []models.Card{}, 0, nil
	}
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.coll.Find(ctx, query, findOptions(bson.D{{Key: "name", Value: 1}}, page))
	if err != nil {
		return nil, 0, err
	}
	cards, err := decodeCards(ctx, cursor)
	return cards, total, err
}

// Update saves every field of an existing card in one write
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	doc, err := cardToDocument(card)
	if err != nil {
		return err
	}
	set := bson.D{
		{Key: "name", Value: doc.Name},
		{Key: "type", Value: doc.Type},
		{Key: "rarity", Value: doc.Rarity},
		{Key: "text", Value: doc.Text},
		{Key: "collection_id", Value: doc.CollectionID},
	}
	return updateOne(ctx, r.coll, card.ID, set)
}

// Delete removes a card by ID. Decks holding its id are left untouched.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func decodeCards(ctx context.Context, cursor *mongo.Cursor) ([]models.Card, error) {
	var docs []cardDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	cards := make([]models.Card, 0, len(docs))
	for i := range docs {
		cards = append(cards, docs[i].toModel())
	}
	return cards, nil
}
