// File: /repositories/route_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

// routeOrderColumns is the set of fields a client may order routes by.
var routeOrderColumns = map[string]string{
	"created_at": "created_at",
	"distance":   "distance",
	"title":      "title",
}

// RouteFilter narrows a route listing. Zero values mean "no filter".
type RouteFilter struct {
	Search     string
	Difficulty models.Difficulty
	CreatorID  uint
	Ordering   string
}

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(route).Error
}

// FindByID loads a route with its creator only.
func (r *RouteRepository) FindByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).Preload("Creator").First(&route, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &route, nil
}

// FindDetail loads a route with its nested locations, images and comments.
func (r *RouteRepository) FindDetail(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Locations", newestFirst).
		Preload("Locations.Creator").
		Preload("Locations.Images", newestFirst).
		Preload("Locations.Images.Uploader").
		Preload("Images", newestFirst).
		Preload("Images.Uploader").
		Preload("Comments", oldestFirst).
		Preload("Comments.Author").
		First(&route, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &route, nil
}

func (r *RouteRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Route{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RouteRepository) List(ctx context.Context, filter RouteFilter, req utils.PageRequest) ([]models.Route, utils.Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Route{})

	for _, term := range strings.Fields(filter.Search) {
		pattern := containsPattern(term)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}

	var routes []models.Route
	page, err := paginate(query.Session(&gorm.Session{}), req, routeOrder(filter.Ordering), &routes, preload("Creator"))
	return routes, page, err
}

// routeOrder turns a comma separated ordering parameter into an ORDER BY clause.
// Unknown fields are ignored; the result always ends with a stable id tie-break.
func routeOrder(raw string) string {
	var parts []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}
		if column, ok := routeOrderColumns[field]; ok {
			parts = append(parts, column+" "+direction)
		}
	}
	if len(parts) == 0 {
		return "created_at DESC, id DESC"
	}
	return strings.Join(append(parts, "id DESC"), ", ")
}

func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(route).Error
}

// Delete removes the route with its locations (and their images), images and comments.
// The returned refs are the stored files of the removed images.
func (r *RouteRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		refs, err = deleteRoutes(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

type childCount struct {
	RouteID uint
	N       int64
}

// CountChildren returns the live number of locations, images and comments per route id.
func (r *RouteRepository) CountChildren(ctx context.Context, routeIDs []uint) (map[uint]models.RouteCounts, error) {
	counts := make(map[uint]models.RouteCounts, len(routeIDs))
	if len(routeIDs) == 0 {
		return counts, nil
	}

	tally := func(model interface{}, apply func(*models.RouteCounts, int64)) error {
		var rows []childCount
		err := r.db.WithContext(ctx).Model(model).
			Select("route_id, COUNT(*) AS n").
			Where("route_id IN ?", routeIDs).
			Group("route_id").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			c := counts[row.RouteID]
			apply(&c, row.N)
			counts[row.RouteID] = c
		}
		return nil
	}

	if err := tally(&models.Location{}, func(c *models.RouteCounts, n int64) { c.Locations = n }); err != nil {
		return nil, fmt.Errorf("count locations: %w", err)
	}
	if err := tally(&models.Image{}, func(c *models.RouteCounts, n int64) { c.Images = n }); err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if err := tally(&models.Comment{}, func(c *models.RouteCounts, n int64) { c.Comments = n }); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	return counts, nil
}
