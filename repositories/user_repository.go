// File: /repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user. A username or email already taken yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return duplicate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UsernameTaken reports whether another user already has username. excludeID 0 checks all users.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) List(ctx context.Context, req utils.PageRequest) ([]models.User, utils.Page, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})
	page, err := paginate(query, req, "created_at DESC, id DESC", &users)
	return users, page, err
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return duplicate(r.db.WithContext(ctx).Save(user).Error)
}

// Delete removes the user together with everything they created. The returned refs
// are the stored files (images and avatar) that no row points to any more.
func (r *UserRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err)
		}

		var routeIDs []uint
		if err := tx.Model(&models.Route{}).Where("creator_id = ?", id).Pluck("id", &routeIDs).Error; err != nil {
			return fmt.Errorf("collect user routes: %w", err)
		}
		routeRefs, err := deleteRoutes(tx, routeIDs)
		if err != nil {
			return err
		}

		var locationIDs []uint
		if err := tx.Model(&models.Location{}).Where("creator_id = ?", id).Pluck("id", &locationIDs).Error; err != nil {
			return fmt.Errorf("collect user locations: %w", err)
		}
		locationRefs, err := deleteLocations(tx, locationIDs)
		if err != nil {
			return err
		}

		uploadRefs, err := imageFiles(tx, "uploader_id = ?", id)
		if err != nil {
			return err
		}
		if err := tx.Where("uploader_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("delete user images: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete user comments: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		refs = append(append(routeRefs, locationRefs...), uploadRefs...)
		if user.Avatar != nil && *user.Avatar != "" {
			refs = append(refs, *user.Avatar)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
