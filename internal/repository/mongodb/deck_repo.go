package mongodb

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DeckRepository handles deck data access
type DeckRepository struct {
	coll *mongo.Collection
}

// NewDeckRepository creates a new DeckRepository
func NewDeckRepository(db *mongo.Database) *DeckRepository {
	return &DeckRepository{coll: db.Collection(decksCollection)}
}

// Create inserts a deck and assigns its id
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	doc, err := deckToDocument(deck)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateError(err)
	}
	deck.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a deck by ID
func (r *DeckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc deckDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	deck := doc.toModel()
	return &deck, nil
}

// ExistsByOwnerAndName reports whether owner already has a deck named name
func (r *DeckRepository) ExistsByOwnerAndName(ctx context.Context, ownerID, name string) (bool, error) {
	oid, ok := parseID(ownerID)
	if !ok {
		return false, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "owner_id", Value: oid},
		{Key: "name", Value: name},
	})
	return count > 0, err
}

// deckQuery translates filter into a find document. ok is false when the
// filter names an owner id that cannot exist.
func deckQuery(filter repository.DeckFilter) (query bson.D, ok bool) {
	query = bson.D{}
	if filter.NameQuery != "" {
		query = append(query, bson.E{Key: "name", Value: nameRegex(filter.NameQuery)})
	}
	if filter.OwnerID != "" {
		oid, valid := parseID(filter.OwnerID)
		if !valid {
			return nil, false
		}
		query = append(query, bson.E{Key: "owner_id", Value: oid})
	}
	if filter.Format != "" {
		query = append(query, bson.E{Key: "format", Value: string(filter.Format)})
	}
	created := bson.D{}
	if filter.CreatedFrom != nil {
		created = append(created, bson.E{Key: "$gte", Value: filter.CreatedFrom.UTC()})
	}
	if filter.CreatedTo != nil {
		created = append(created, bson.E{Key: "$lte", Value: filter.CreatedTo.UTC()})
	}
	if len(created) > 0 {
		query = append(query, bson.E{Key: "created_at", Value: created})
	}
	return query, true
}

// List retrieves decks matching filter, newest first
func (r *DeckRepository) List(ctx context.Context, filter repository.DeckFilter, page repository.Page) ([]models.Deck, int64, error) {
	query, ok := deckQuery(filter)
	if !ok {
		return []models.Deck{}, 0, nil
	}
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	cursor, err := r.coll.Find(ctx, query, findOptions(sort, page))
	if err != nil {
		return nil, 0, err
	}

	var docs []deckDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	decks := make([]models.Deck, 0, len(docs))
	for i := range docs {
		decks = append(decks, docs[i].toModel())
	}
	return decks, total, nil
}

// Count returns the number of decks matching filter
func (r *DeckRepository) Count(ctx context.Context, filter repository.DeckFilter) (int64, error) {
	query, ok := deckQuery(filter)
	if !ok {
		return 0, nil
	}
	return r.coll.CountDocuments(ctx, query)
}

// Update saves name, format and card list of an existing deck in one write
func (r *DeckRepository) Update(ctx context.Context, deck *models.Deck) error {
	cardIDs, err := cardObjectIDs(deck.CardIDs)
	if err != nil {
		return err
	}
	return updateOne(ctx, r.coll, deck.ID, bson.D{
		{Key: "name", Value: deck.Name},
		{Key: "format", Value: string(deck.Format)},
		{Key: "card_ids", Value: cardIDs},
	})
}

// Delete removes a deck by ID
func (r *DeckRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}
