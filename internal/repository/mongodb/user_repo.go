package mongodb

import (
	"context"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles user data access
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// Create inserts a user and assigns its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateError(err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	user := doc.toModel()
	return &user, nil
}

// ExistsByEmail reports whether a user already uses email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "email", Value: email}})
	return count > 0, err
}

// FindByIDs retrieves the users that exist among ids
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, err
	}
	return decodeUsers(ctx, cursor)
}

// List retrieves users with pagination, oldest first
func (r *UserRepository) List(ctx context.Context, page repository.Page) ([]models.User, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	cursor, err := r.coll.Find(ctx, bson.D{}, findOptions(sort, page))
	if err != nil {
		return nil, 0, err
	}
	users, err := decodeUsers(ctx, cursor)
	return users, total, err
}

// Update saves name, email and password hash of an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return updateOne(ctx, r.coll, user.ID, bson.D{
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "password_hash", Value: user.PasswordHash},
	})
}

// Delete removes a user by ID. Decks owned by the user are left untouched.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]models.User, error) {
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}
