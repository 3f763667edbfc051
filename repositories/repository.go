// File: /repositories/repository.go
package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

var (
	// ErrNotFound is returned by Find* methods when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate relies on gorm.Config.TranslateError to surface unique violations as gorm.ErrDuplicatedKey.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// paginate counts rows matched by query, resolves the requested page and loads it into dest.
// query must be a reusable session with its model and filters already applied;
// scopes (preloads) are only applied to the page query.
func paginate(query *gorm.DB, req utils.PageRequest, order string, dest interface{}, scopes ...func(*gorm.DB) *gorm.DB) (utils.Page, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Page{}, fmt.Errorf("count: %w", err)
	}

	page, err := req.Resolve(total)
	if err != nil {
		return utils.Page{}, err
	}

	if err := query.Scopes(scopes...).Order(order).Offset(page.Offset()).Limit(page.Size).Find(dest).Error; err != nil {
		return utils.Page{}, fmt.Errorf("find: %w", err)
	}
	return page, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern is a case-insensitive substring pattern for LIKE ... ESCAPE '!'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func preload(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(name)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// imageFiles returns the stored file refs of the images matching the condition.
func imageFiles(tx *gorm.DB, cond string, args ...interface{}) ([]string, error) {
	var refs []string
	if err := tx.Model(&models.Image{}).Where(cond, args...).Pluck("image", &refs).Error; err != nil {
		return nil, fmt.Errorf("collect image files: %w", err)
	}
	return refs, nil
}

// deleteLocations removes locations and the images attached to them.
// It returns the file refs of the removed images.
func deleteLocations(tx *gorm.DB, locationIDs []uint) ([]string, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	refs, err := imageFiles(tx, "location_id IN ?", locationIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("location_id IN ?", locationIDs).Delete(&models.Image{}).Error; err != nil {
		return nil, fmt.Errorf("delete location images: %w", err)
	}
	if err := tx.Where("id IN ?", locationIDs).Delete(&models.Location{}).Error; err != nil {
		return nil, fmt.Errorf("delete locations: %w", err)
	}
	return refs, nil
}

// deleteRoutes removes routes with their locations, images and comments.
// It returns the file refs of every removed image.
func deleteRoutes(tx *gorm.DB, routeIDs []uint) ([]string, error) {
	if len(routeIDs) == 0 {
		return nil, nil
	}

	var locationIDs []uint
	if err := tx.Model(&models.Location{}).Where("route_id IN ?", routeIDs).Pluck("id", &locationIDs).Error; err != nil {
		return nil, fmt.Errorf("collect route locations: %w", err)
	}
	refs, err := deleteLocations(tx, locationIDs)
	if err != nil {
		return nil, err
	}

	routeRefs, err := imageFiles(tx, "route_id IN ?", routeIDs)
	if err != nil {
		return nil, err
	}
	refs = append(refs, routeRefs...)

	if err := tx.Where("route_id IN ?", routeIDs).Delete(&models.Image{}).Error; err != nil {
		return nil, fmt.Errorf("delete route images: %w", err)
	}
	if err := tx.Where("route_id IN ?", routeIDs).Delete(&models.Comment{}).Error; err != nil {
		return nil, fmt.Errorf("delete route comments: %w", err)
	}
	if err := tx.Where("id IN ?", routeIDs).Delete(&models.Route{}).Error; err != nil {
		return nil, fmt.Errorf("delete routes: %w", err)
	}
	return refs, nil
}
