package mongodb

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionRepository handles collection data access
type CollectionRepository struct {
	coll *mongo.Collection
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *mongo.Database) *CollectionRepository {
	return &CollectionRepository{coll: db.Collection(collectionsCollection)}
}

// Create inserts a collection and assigns its id
func (r *CollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	doc := collectionDocument{
		ID:          primitive.NewObjectID(),
		Name:        collection.Name,
		ReleaseDate: collection.ReleaseDate.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateError(err)
	}
	collection.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc collectionDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	collection := doc.toModel()
	return &collection, nil
}

// FindByIDs retrieves the collections that exist among ids
func (r *CollectionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return []models.Collection{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, err
	}
	return decodeCollections(ctx, cursor)
}

// collectionQuery translates filter into a find document
func collectionQuery(filter repository.CollectionFilter) bson.D {
	query := bson.D{}
	if filter.NameQuery != "" {
		query = append(query, bson.E{Key: "name", Value: nameRegex(filter.NameQuery)})
	}
	released := bson.D{}
	if filter.ReleasedFrom != nil {
		released = append(released, bson.E{Key: "$gte", Value: filter.ReleasedFrom.UTC()})
	}
	if filter.ReleasedTo != nil {
		released = append(released, bson.E{Key: "$lt", Value: filter.ReleasedTo.UTC()})
	}
	if len(released) > 0 {
		query = append(query, bson.E{Key: "release_date", Value: released})
	}
	return query
}

// List retrieves collections matching filter, ordered by release date
func (r *CollectionRepository) List(ctx context.Context, filter repository.CollectionFilter, page repository.Page) ([]models.Collection, int64, error) {
	query := collectionQuery(filter)
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "release_date", Value: 1}, {Key: "name", Value: 1}}
	cursor, err := r.coll.Find(ctx, query, findOptions(sort, page))
	if err != nil {
		return nil, 0, err
	}
	collections, err := decodeCollections(ctx, cursor)
	return collections, total, err
}

// Count returns the number of stored collections
func (r *CollectionRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

// Update saves name and release date of an existing collection
func (r *CollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	return updateOne(ctx, r.coll, collection.ID, bson.D{
		{Key: "name", Value: collection.Name},
		{Key: "release_date", Value: collection.ReleaseDate.UTC()},
	})
}

// Delete removes a collection by ID. Cards referencing it are left untouched.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func decodeCollections(ctx context.Context, cursor *mongo.Cursor) ([]models.Collection, error) {
	var docs []collectionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	collections := make([]models.Collection, 0, len(docs))
	for i := range docs {
		collections = append(collections, docs[i].toModel())
	}
	return collections, nil
}
