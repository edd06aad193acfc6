package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tcg-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection       = "users"
	collectionsCollection = "collections"
	cardsCollection       = "cards"
	decksCollection       = "decks"
)

// Connect opens a client for uri and verifies the primary is reachable
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes every repository relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
		collectionsCollection: {
			{Keys: bson.D{{Key: "release_date", Value: 1}}},
		},
		cardsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_name")},
			{Keys: bson.D{{Key: "collection_id", Value: 1}}},
		},
		decksCollection: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_owner_name"),
			},
			{Keys: bson.D{{Key: "format", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// NewStore wires every MongoDB repository over the named database
func NewStore(client *mongo.Client, dbName string) *repository.Store {
	db := client.Database(dbName)
	return repository.NewStore(
		"mongodb",
		&backend{client: client},
		NewUserRepository(db),
		NewCollectionRepository(db),
		NewCardRepository(db),
		NewDeckRepository(db),
		NewStatsRepository(db),
	)
}

type backend struct {
	client *mongo.Client
}

func (b *backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// translateError maps driver errors onto repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicateKey, err)
	}
	return err
}

// parseID converts a hex id; ids that are not ObjectIDs can never resolve
func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// parseIDs converts ids, dropping the ones that are not valid ObjectIDs
func parseIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := parseID(id); ok {
			oids = append(oids, oid)
		}
	}
	return oids
}

// nameRegex matches names containing query, case-insensitively, with regex
// metacharacters taken literally
func nameRegex(query string) primitive.Regex {
	return primitive.Regex{
		Pattern: regexp.QuoteMeta(strings.TrimSpace(query)),
		Options: "i",
	}
}

// findOptions applies sort and pagination; a zero limit returns everything
func findOptions(sort bson.D, page repository.Page) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	return opts
}

// updateOne applies set to the document with id, reporting ErrNotFound when nothing matched
func updateOne(ctx context.Context, coll *mongo.Collection, id string, set bson.D) error {
	oid, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	result, err := coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// deleteOne removes the document with id, reporting ErrNotFound when nothing matched
func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	result, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
