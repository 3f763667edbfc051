// File: /services/route_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
	"motoroutes-api/utils"
)

// RouteInput is the writable part of a route. creator and creator_id are never read.
type RouteInput struct {
	Title        *string                 `json:"title" validate:"omitempty,max=200"`
	Description  *string                 `json:"description"`
	Difficulty   *string                 `json:"difficulty"`
	GeoJSON      json.RawMessage         `json:"geojson"`
	Distance     utils.Optional[float64] `json:"distance"`
	DurationDays utils.Optional[int]     `json:"duration_days"`
}

// RouteQuery holds the list query parameters.
type RouteQuery struct {
	Search     string
	Difficulty string
	Ordering   string
}

// RouteListing is a route with the sizes of its child collections.
type RouteListing struct {
	Route  models.Route
	Counts models.RouteCounts
}

type RouteService struct {
	routes   *repositories.RouteRepository
	storage  FileStorage
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewRouteService(routes *repositories.RouteRepository, storage FileStorage, validate *validator.Validate) *RouteService {
	return &RouteService{
		routes:   routes,
		storage:  storage,
		validate: validate,
		logger:   log.With().Str("service", "route").Logger(),
	}
}

func (s *RouteService) List(ctx context.Context, q RouteQuery, page utils.PageRequest) ([]RouteListing, utils.Page, error) {
	filter := repositories.RouteFilter{Search: q.Search, Ordering: q.Ordering}
	if q.Difficulty != "" {
		if !utils.IsValidDifficulty(models.Difficulty(q.Difficulty)) {
			return nil, utils.Page{}, errs.FieldError("difficulty",
				fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", q.Difficulty))
		}
		filter.Difficulty = models.Difficulty(q.Difficulty)
	}
	return s.list(ctx, filter, page)
}

// ListByUser lists routes created by userID, newest first.
func (s *RouteService) ListByUser(ctx context.Context, userID uint, page utils.PageRequest) ([]RouteListing, utils.Page, error) {
	return s.list(ctx, repositories.RouteFilter{CreatorID: userID}, page)
}

func (s *RouteService) list(ctx context.Context, filter repositories.RouteFilter, req utils.PageRequest) ([]RouteListing, utils.Page, error) {
	routes, page, err := s.routes.List(ctx, filter, req)
	if err != nil {
		return nil, utils.Page{}, err
	}

	ids := make([]uint, len(routes))
	for i, route := range routes {
		ids[i] = route.ID
	}
	counts, err := s.routes.CountChildren(ctx, ids)
	if err != nil {
		return nil, utils.Page{}, err
	}

	listings := make([]RouteListing, len(routes))
	for i, route := range routes {
		listings[i] = RouteListing{Route: route, Counts: counts[route.ID]}
	}
	return listings, page, nil
}

// Get returns the full route with nested children and counts.
func (s *RouteService) Get(ctx context.Context, id uint) (*RouteListing, error) {
	route, err := s.routes.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("Route")
		}
		return nil, err
	}

	counts, err := s.routes.CountChildren(ctx, []uint{route.ID})
	if err != nil {
		return nil, err
	}
	return &RouteListing{Route: *route, Counts: counts[route.ID]}, nil
}

// Create stores a new route owned by the caller.
func (s *RouteService) Create(ctx context.Context, identity models.Identity, in RouteInput) (*RouteListing, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	route := &models.Route{Difficulty: models.DifficultyModerate}
	if err := s.apply(route, in, false); err != nil {
		return nil, err
	}
	route.CreatorID = identity.UserID

	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	s.logger.Info().Uint("route_id", route.ID).Uint("creator_id", route.CreatorID).Msg("route created")
	return s.Get(ctx, route.ID)
}

// Update replaces (partial=false) or patches a route. Only the creator may do so.
func (s *RouteService) Update(ctx context.Context, identity models.Identity, id uint, in RouteInput, partial bool) (*RouteListing, error) {
	route, err := s.owned(ctx, identity, id, "You can only edit your own routes")
	if err != nil {
		return nil, err
	}

	if err := s.apply(route, in, partial); err != nil {
		return nil, err
	}
	if err := s.routes.Update(ctx, route); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	return s.Get(ctx, route.ID)
}

func (s *RouteService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	if _, err := s.owned(ctx, identity, id, "You can only delete your own routes"); err != nil {
		return err
	}
	refs, err := s.routes.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	removeFiles(ctx, s.storage, s.logger, refs)

	s.logger.Info().Uint("route_id", id).Uint("user_id", identity.UserID).Msg("route deleted")
	return nil
}

// owned loads the route first so a missing route is reported before an ownership failure.
func (s *RouteService) owned(ctx context.Context, identity models.Identity, id uint, forbidden string) (*models.Route, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	route, err := s.routes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("Route")
		}
		return nil, err
	}
	if !identity.Owns(route.CreatorID) {
		return nil, errs.Forbidden(forbidden)
	}
	return route, nil
}

// apply validates in and copies the present fields onto route. Without partial,
// every required field must be present.
func (s *RouteService) apply(route *models.Route, in RouteInput, partial bool) error {
	fields := errs.FieldErrors{}

	if !partial || in.Title != nil {
		requireString(fields, "title", in.Title)
	}
	if !partial || in.Description != nil {
		requireString(fields, "description", in.Description)
	}
	if in.Difficulty != nil && !utils.IsValidDifficulty(models.Difficulty(*in.Difficulty)) {
		fields.Add("difficulty", fmt.Sprintf("%q is not a valid choice.", *in.Difficulty))
	}

	var geojson []byte
	if !partial || in.GeoJSON != nil {
		var err error
		if geojson, err = ValidateGeoJSON(in.GeoJSON); err != nil {
			fields.Add("geojson", err.Error())
		}
	}

	requireFloat(fields, "distance", in.Distance, partial)

	if in.DurationDays.Set && !in.DurationDays.Null && in.DurationDays.Value < 0 {
		fields.Add("duration_days", "Ensure this value is greater than or equal to 0.")
	}

	mergeValidation(fields, s.validate.Struct(in))
	if err := fields.Err(); err != nil {
		return err
	}

	assign(&route.Title, in.Title)
	assign(&route.Description, in.Description)
	if in.Difficulty != nil {
		route.Difficulty = models.Difficulty(*in.Difficulty)
	}
	if geojson != nil {
		route.GeoJSON = datatypes.JSON(geojson)
	}
	if in.Distance.Set {
		route.Distance = in.Distance.Value
	}
	if in.DurationDays.Set {
		route.DurationDays = in.DurationDays.Ptr()
	}
	return nil
}

// ValidateGeoJSON checks that raw is a JSON object with "type" and "coordinates" keys
// and returns it compacted. Nothing deeper is inspected.
func ValidateGeoJSON(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("This field is required.")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("This field may not be null.")
	}

	var value interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, errors.New("Value must be valid JSON.")
	}

	object, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.New("GeoJSON must be a valid JSON object.")
	}
	if _, ok := object["type"]; !ok {
		return nil, errors.New("GeoJSON must have a 'type' field.")
	}
	if _, ok := object["coordinates"]; !ok {
		return nil, errors.New("GeoJSON must have a 'coordinates' field.")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, errors.New("Value must be valid JSON.")
	}
	return compact.Bytes(), nil
}
