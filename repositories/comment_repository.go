// File: /repositories/comment_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

// List returns comments oldest first, optionally restricted to one route.
func (r *CommentRepository) List(ctx context.Context, routeID uint, req utils.PageRequest) ([]models.Comment, utils.Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{})
	if routeID != 0 {
		query = query.Where("route_id = ?", routeID)
	}

	var comments []models.Comment
	page, err := paginate(query.Session(&gorm.Session{}), req, "created_at ASC, id ASC", &comments, preload("Author"))
	return comments, page, err
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
