package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"gorm.io/gorm"
)

// CollectionRepository handles collection data access
type CollectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create inserts a collection and assigns its id
func (r *CollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	m := collectionToModel(collection)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	collection.ID = m.ID
	return nil
}

// GetByID retrieves a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	var m CollectionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return collectionFromModel(&m), nil
}

// FindByIDs retrieves the collections that exist among ids
func (r *CollectionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error) {
	if len(ids) == 0 {
		return []models.Collection{}, nil
	}
	var rows []CollectionModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return collectionsFromModels(rows), nil
}

func (r *CollectionRepository) filtered(ctx context.Context, filter repository.CollectionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&CollectionModel{})
	if filter.NameQuery != "" {
		q = q.Where(nameLikeClause, nameLike(filter.NameQuery))
	}
	if filter.ReleasedFrom != nil {
		q = q.Where("release_date >= ?", filter.ReleasedFrom.UTC())
	}
	if filter.ReleasedTo != nil {
		q = q.Where("release_date < ?", filter.ReleasedTo.UTC())
	}
	return q
}

// List retrieves collections matching filter, ordered by release date
func (r *CollectionRepository) List(ctx context.Context, filter repository.CollectionFilter, page repository.Page) ([]models.Collection, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []CollectionModel
	q := r.filtered(ctx, filter).Order("release_date ASC").Order("name ASC")
	if err := paginate(q, page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return collectionsFromModels(rows), total, nil
}

// Count returns the number of stored collections
func (r *CollectionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&CollectionModel{}).Count(&total).Error
	return total, err
}

// Update saves every field of an existing collection
func (r *CollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	m := collectionToModel(collection)
	result := r.db.WithContext(ctx).Model(&CollectionModel{}).Where("id = ?", m.ID).
		Select("name", "release_date").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a collection by ID. Cards referencing it are left untouched.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CollectionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectionsFromModels(rows []CollectionModel) []models.Collection {
	collections := make([]models.Collection, 0, len(rows))
	for i := range rows {
		collections = append(collections, *collectionFromModel(&rows[i]))
	}
	return collections
}
