// File: /repositories/image_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(image).Error
}

func (r *ImageRepository) FindByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Preload("Uploader").First(&image, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &image, nil
}

func (r *ImageRepository) List(ctx context.Context, req utils.PageRequest) ([]models.Image, utils.Page, error) {
	var images []models.Image
	query := r.db.WithContext(ctx).Model(&models.Image{}).Session(&gorm.Session{})
	page, err := paginate(query, req, "created_at DESC, id DESC", &images, preload("Uploader"))
	return images, page, err
}

func (r *ImageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Image{}, id).Error
}
