// File: /services/image_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
	"motoroutes-api/utils"
)

// imageRefFields are the form fields holding foreign keys.
var imageRefFields = []string{"route", "location"}

type ImageInput struct {
	File     *Upload `json:"image"`
	Caption  *string `json:"caption" validate:"omitempty,max=200"`
	Route    PKValue `json:"route"`
	Location PKValue `json:"location"`
}

// NormalizeImageForm converts the route and location form values to integers where they parse.
// Values that do not parse are kept as they are; empty values become nil.
func NormalizeImageForm(values map[string]string) map[string]interface{} {
	normalized := make(map[string]interface{}, len(values))
	for key, value := range values {
		normalized[key] = value
	}

	for _, key := range imageRefFields {
		value, ok := values[key]
		if !ok {
			continue
		}
		if value == "" {
			normalized[key] = nil
			continue
		}
		if n, err := strconv.Atoi(value); err == nil {
			normalized[key] = n
		}
	}
	return normalized
}

// ImageInputFromForm normalizes a multipart form and builds the typed input from it.
func ImageInputFromForm(values map[string]string, file *Upload) ImageInput {
	normalized := NormalizeImageForm(values)

	in := ImageInput{File: file}
	if caption, ok := values["caption"]; ok {
		in.Caption = &caption
	}
	for _, key := range imageRefFields {
		value, ok := normalized[key]
		if !ok {
			continue
		}
		pk := PKFromValue(value)
		if key == "route" {
			in.Route = pk
		} else {
			in.Location = pk
		}
	}
	return in
}

type ImageService struct {
	images       *repositories.ImageRepository
	routes       *repositories.RouteRepository
	locations    *repositories.LocationRepository
	storage      FileStorage
	validate     *validator.Validate
	strictTarget bool
	logger       zerolog.Logger
}

func NewImageService(
	images *repositories.ImageRepository,
	routes *repositories.RouteRepository,
	locations *repositories.LocationRepository,
	storage FileStorage,
	validate *validator.Validate,
	strictTarget bool,
) *ImageService {
	return &ImageService{
		images:       images,
		routes:       routes,
		locations:    locations,
		storage:      storage,
		validate:     validate,
		strictTarget: strictTarget,
		logger:       log.With().Str("service", "image").Logger(),
	}
}

func (s *ImageService) List(ctx context.Context, page utils.PageRequest) ([]models.Image, utils.Page, error) {
	return s.images.List(ctx, page)
}

func (s *ImageService) Get(ctx context.Context, id uint) (*models.Image, error) {
	image, err := s.images.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("Image")
		}
		return nil, err
	}
	return image, nil
}

// Create stores the uploaded file and records the image for the caller.
func (s *ImageService) Create(ctx context.Context, identity models.Identity, in ImageInput) (*models.Image, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	fields := errs.FieldErrors{}
	if in.File == nil {
		fields.Add("image", "No file was submitted.")
	}
	if err := checkPK(ctx, fields, "route", in.Route, s.routes.Exists); err != nil {
		return nil, err
	}
	if err := checkPK(ctx, fields, "location", in.Location, s.locations.Exists); err != nil {
		return nil, err
	}
	mergeValidation(fields, s.validate.Struct(in))
	if err := fields.Err(); err != nil {
		return nil, err
	}

	image := &models.Image{
		Caption:    deref(in.Caption),
		RouteID:    in.Route.Ptr(),
		LocationID: in.Location.Ptr(),
		UploaderID: identity.UserID,
	}
	if s.strictTarget {
		if err := requireSingleTarget(image.Target()); err != nil {
			return nil, err
		}
	}

	ref, err := storeImage(ctx, s.storage, "route_images", "image", in.File)
	if err != nil {
		return nil, err
	}
	image.File = ref

	if err := s.images.Create(ctx, image); err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			s.logger.Warn().Err(delErr).Str("ref", ref).Msg("could not remove orphaned upload")
		}
		return nil, fmt.Errorf("create image: %w", err)
	}

	s.logger.Info().Uint("image_id", image.ID).Str("target", string(image.Target().Kind)).Msg("image uploaded")
	return s.Get(ctx, image.ID)
}

func requireSingleTarget(target models.ImageTarget) error {
	switch target.Kind {
	case models.TargetBoth:
		return errs.FieldError("non_field_errors", "An image must be attached to either a route or a location, not both.")
	case models.TargetUnattached:
		return errs.FieldError("non_field_errors", "An image must be attached to a route or a location.")
	}
	return nil
}

// Delete removes an image. Any authenticated caller may delete any image; the uploader is not checked.
func (s *ImageService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	if !identity.IsAuthenticated() {
		return errs.Unauthorized("Authentication credentials were not provided.")
	}

	image, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Delete(ctx, image.ID); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if err := s.storage.Delete(ctx, image.File); err != nil {
		s.logger.Warn().Err(err).Str("ref", image.File).Msg("could not remove image file")
	}
	if !identity.Owns(image.UploaderID) {
		s.logger.Info().Uint("image_id", image.ID).Uint("uploader_id", image.UploaderID).
			Uint("deleted_by", identity.UserID).Msg("image deleted by non-uploader")
	}
	return nil
}
