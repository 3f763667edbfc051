// File: /repositories/location_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Creator").
		Preload("Images", newestFirst).
		Preload("Images.Uploader")
}

func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(location).Error
}

func (r *LocationRepository) FindByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.withRelations(r.db.WithContext(ctx)).First(&location, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &location, nil
}

func (r *LocationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns locations newest first, optionally restricted to one route.
func (r *LocationRepository) List(ctx context.Context, routeID uint, req utils.PageRequest) ([]models.Location, utils.Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Location{})
	if routeID != 0 {
		query = query.Where("route_id = ?", routeID)
	}

	var locations []models.Location
	page, err := paginate(query.Session(&gorm.Session{}), req, "created_at DESC, id DESC", &locations, r.withRelations)
	return locations, page, err
}

func (r *LocationRepository) Update(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(location).Error
}

// Delete removes the location and its images, returning the images' stored files.
func (r *LocationRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		refs, err = deleteLocations(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
