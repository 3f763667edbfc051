// File: /services/location_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
	"motoroutes-api/utils"
)

// LocationInput is the writable part of a point of interest. Coordinates are not range checked.
type LocationInput struct {
	Name         *string                 `json:"name" validate:"omitempty,max=200"`
	Description  *string                 `json:"description"`
	LocationType *string                 `json:"location_type"`
	Latitude     utils.Optional[float64] `json:"latitude"`
	Longitude    utils.Optional[float64] `json:"longitude"`
	Route        PKValue                 `json:"route"`
}

type LocationService struct {
	locations *repositories.LocationRepository
	routes    *repositories.RouteRepository
	storage   FileStorage
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewLocationService(
	locations *repositories.LocationRepository,
	routes *repositories.RouteRepository,
	storage FileStorage,
	validate *validator.Validate,
) *LocationService {
	return &LocationService{
		locations: locations,
		routes:    routes,
		storage:   storage,
		validate:  validate,
		logger:    log.With().Str("service", "location").Logger(),
	}
}

func (s *LocationService) List(ctx context.Context, page utils.PageRequest) ([]models.Location, utils.Page, error) {
	return s.locations.List(ctx, 0, page)
}

// ListByRoute lists the locations pinned to routeID. An unknown route yields an empty page.
func (s *LocationService) ListByRoute(ctx context.Context, routeID uint, page utils.PageRequest) ([]models.Location, utils.Page, error) {
	return s.locations.List(ctx, routeID, page)
}

func (s *LocationService) Get(ctx context.Context, id uint) (*models.Location, error) {
	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("Location")
		}
		return nil, err
	}
	return location, nil
}

func (s *LocationService) Create(ctx context.Context, identity models.Identity, in LocationInput) (*models.Location, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	location := &models.Location{}
	if err := s.apply(ctx, location, in, false); err != nil {
		return nil, err
	}
	location.CreatorID = identity.UserID

	if err := s.locations.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	s.logger.Info().Uint("location_id", location.ID).Uint("creator_id", location.CreatorID).Msg("location created")
	return s.Get(ctx, location.ID)
}

func (s *LocationService) Update(ctx context.Context, identity models.Identity, id uint, in LocationInput, partial bool) (*models.Location, error) {
	location, err := s.owned(ctx, identity, id, "You can only edit your own locations")
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, location, in, partial); err != nil {
		return nil, err
	}
	if err := s.locations.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return s.Get(ctx, location.ID)
}

func (s *LocationService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	if _, err := s.owned(ctx, identity, id, "You can only delete your own locations"); err != nil {
		return err
	}
	refs, err := s.locations.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	removeFiles(ctx, s.storage, s.logger, refs)
	return nil
}

func (s *LocationService) owned(ctx context.Context, identity models.Identity, id uint, forbidden string) (*models.Location, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	location, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.Owns(location.CreatorID) {
		return nil, errs.Forbidden(forbidden)
	}
	return location, nil
}

func (s *LocationService) apply(ctx context.Context, location *models.Location, in LocationInput, partial bool) error {
	fields := errs.FieldErrors{}

	if !partial || in.Name != nil {
		requireString(fields, "name", in.Name)
	}
	switch {
	case in.LocationType != nil && *in.LocationType == "":
		fields.Add("location_type", "\"\" is not a valid choice.")
	case in.LocationType != nil && !utils.IsValidLocationType(models.LocationType(*in.LocationType)):
		fields.Add("location_type", fmt.Sprintf("%q is not a valid choice.", *in.LocationType))
	case in.LocationType == nil && !partial:
		fields.Add("location_type", "This field is required.")
	}
	requireFloat(fields, "latitude", in.Latitude, partial)
	requireFloat(fields, "longitude", in.Longitude, partial)

	if err := checkPK(ctx, fields, "route", in.Route, s.routes.Exists); err != nil {
		return err
	}

	mergeValidation(fields, s.validate.Struct(in))
	if err := fields.Err(); err != nil {
		return err
	}

	assign(&location.Name, in.Name)
	assign(&location.Description, in.Description)
	if in.LocationType != nil {
		location.LocationType = models.LocationType(*in.LocationType)
	}
	if in.Latitude.Set {
		location.Latitude = in.Latitude.Value
	}
	if in.Longitude.Set {
		location.Longitude = in.Longitude.Value
	}
	if in.Route.Set {
		location.RouteID = in.Route.Ptr()
	}
	return nil
}

func requireFloat(fields errs.FieldErrors, name string, value utils.Optional[float64], partial bool) {
	switch {
	case !value.Set:
		if !partial {
			fields.Add(name, "This field is required.")
		}
	case value.Null:
		fields.Add(name, "This field may not be null.")
	}
}
