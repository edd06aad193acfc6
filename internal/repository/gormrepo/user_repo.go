package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"gorm.io/gorm"
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and assigns its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	m := userToModel(user)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return userFromModel(&m), nil
}

// ExistsByEmail reports whether a user already uses email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// FindByIDs retrieves the users that exist among ids
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var rows []UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *userFromModel(&rows[i]))
	}
	return users, nil
}

// List retrieves users with pagination, oldest first
func (r *UserRepository) List(ctx context.Context, page repository.Page) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []UserModel
	q := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if err := paginate(q, page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *userFromModel(&rows[i]))
	}
	return users, total, nil
}

// Update saves every field of an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	m := userToModel(user)
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", m.ID).
		Select("name", "email", "password_hash").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
