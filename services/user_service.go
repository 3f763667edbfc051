// File: /services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
	"motoroutes-api/utils"
)

type RegisterInput struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username"`
	Email     *string `json:"email" validate:"omitempty,max=254,email"`
	Password  *string `json:"password"`
	Password2 *string `json:"password2"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// ProfileInput is a self-service profile edit. id and username are not accepted.
type ProfileInput struct {
	Email           *string             `json:"email" validate:"omitempty,max=254,email"`
	FirstName       *string             `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string             `json:"last_name" validate:"omitempty,max=150"`
	Bio             *string             `json:"bio" validate:"omitempty,max=500"`
	Country         *string             `json:"country" validate:"omitempty,max=100"`
	MotorcycleType  *string             `json:"motorcycle_type" validate:"omitempty,motorcycle_type"`
	MotorcycleBrand *string             `json:"motorcycle_brand" validate:"omitempty,max=100"`
	MotorcycleModel *string             `json:"motorcycle_model" validate:"omitempty,max=100"`
	MotorcycleYear  utils.Optional[int] `json:"motorcycle_year"`

	// ClearAvatar removes the current avatar; Avatar replaces it.
	ClearAvatar bool    `json:"-"`
	Avatar      *Upload `json:"-"`
}

type UserService struct {
	users    *repositories.UserRepository
	storage  FileStorage
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(users *repositories.UserRepository, storage FileStorage, validate *validator.Validate) *UserService {
	return &UserService{
		users:    users,
		storage:  storage,
		validate: validate,
		logger:   log.With().Str("service", "user").Logger(),
	}
}

// Register creates an account. Nothing is written unless every check passes.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := errs.FieldErrors{}
	requireString(fields, "username", in.Username)
	requireString(fields, "email", in.Email)
	requireString(fields, "password", in.Password)
	requireString(fields, "password2", in.Password2)
	mergeValidation(fields, s.validate.Struct(in))

	if !fields.Has("username") {
		taken, err := s.users.UsernameTaken(ctx, *in.Username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			fields.Add("username", "A user with that username already exists.")
		}
	}
	if !fields.Has("email") {
		taken, err := s.users.EmailTaken(ctx, *in.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			fields.Add("email", "user with this email already exists.")
		}
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	if *in.Password != *in.Password2 {
		return nil, errs.FieldError("password", "Password fields didn't match.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:  *in.Username,
		Email:     *in.Email,
		Password:  string(hash),
		FirstName: deref(in.FirstName),
		LastName:  deref(in.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, s.conflict(ctx, user.Username, user.Email, 0)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, identity models.Identity) (*models.User, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}
	return s.Get(ctx, identity.UserID)
}

// UpdateProfile applies the fields present in in to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, identity models.Identity, in ProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, identity)
	if err != nil {
		return nil, err
	}

	fields := errs.FieldErrors{}
	mergeValidation(fields, s.validate.Struct(in))
	if in.Email != nil && *in.Email != "" && !fields.Has("email") {
		taken, err := s.users.EmailTaken(ctx, *in.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			fields.Add("email", "user with this email already exists.")
		}
	}
	if in.MotorcycleYear.Set && !in.MotorcycleYear.Null && in.MotorcycleYear.Value < 0 {
		fields.Add("motorcycle_year", "Ensure this value is greater than or equal to 0.")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	assign(&user.Email, in.Email)
	assign(&user.FirstName, in.FirstName)
	assign(&user.LastName, in.LastName)
	assign(&user.Bio, in.Bio)
	assign(&user.Country, in.Country)
	assign(&user.MotorcycleBrand, in.MotorcycleBrand)
	assign(&user.MotorcycleModel, in.MotorcycleModel)
	if in.MotorcycleType != nil {
		user.MotorcycleType = models.MotorcycleType(*in.MotorcycleType)
	}
	if in.MotorcycleYear.Set {
		user.MotorcycleYear = in.MotorcycleYear.Ptr()
	}

	previousAvatar := user.Avatar
	switch {
	case in.Avatar != nil:
		ref, err := storeImage(ctx, s.storage, "avatars", "avatar", in.Avatar)
		if err != nil {
			return nil, err
		}
		user.Avatar = &ref
	case in.ClearAvatar:
		user.Avatar = nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, s.conflict(ctx, "", user.Email, user.ID)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if previousAvatar != nil && (user.Avatar == nil || *user.Avatar != *previousAvatar) {
		if err := s.storage.Delete(ctx, *previousAvatar); err != nil {
			s.logger.Warn().Err(err).Str("ref", *previousAvatar).Msg("could not remove replaced avatar")
		}
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("User")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, page utils.PageRequest) ([]models.User, utils.Page, error) {
	return s.users.List(ctx, page)
}

// conflict reports a unique index violation that slipped past the up-front checks
// (a concurrent registration or email change) as a field error.
func (s *UserService) conflict(ctx context.Context, username, email string, excludeID uint) error {
	fields := errs.FieldErrors{}
	if username != "" {
		if taken, err := s.users.UsernameTaken(ctx, username, excludeID); err == nil && taken {
			fields.Add("username", "A user with that username already exists.")
		}
	}
	if email != "" {
		if taken, err := s.users.EmailTaken(ctx, email, excludeID); err == nil && taken {
			fields.Add("email", "user with this email already exists.")
		}
	}
	if len(fields) == 0 {
		if username != "" {
			fields.Add("username", "A user with that username already exists.")
		} else {
			fields.Add("email", "user with this email already exists.")
		}
	}
	return fields.Err()
}

// Delete removes a user and, transitively, everything they own, then the files
// those rows referenced. Maintenance use only.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	refs, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errs.NotFound("User")
		}
		return err
	}
	removeFiles(ctx, s.storage, s.logger, refs)
	s.logger.Info().Uint("user_id", id).Int("files", len(refs)).Msg("user deleted")
	return nil
}

// storeImage validates an uploaded image and saves it under dir.
func storeImage(ctx context.Context, storage FileStorage, dir, field string, upload *Upload) (string, error) {
	if upload.Size == 0 {
		return "", errs.FieldError(field, "The submitted file is empty.")
	}
	content, contentType, ok := sniffImage(upload)
	if !ok {
		return "", errs.FieldError(field, invalidImageMessage)
	}

	ref, err := storage.Save(ctx, dir, upload.Filename, content, upload.Size, contentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	return ref, nil
}

// requireString records a required-field error for a missing or blank value.
func requireString(fields errs.FieldErrors, name string, value *string) {
	switch {
	case value == nil:
		fields.Add(name, "This field is required.")
	case strings.TrimSpace(*value) == "":
		fields.Add(name, "This field may not be blank.")
	}
}

// mergeValidation adds validator failures for fields that have no error yet.
func mergeValidation(fields errs.FieldErrors, err error) {
	if err == nil {
		return
	}
	for name, messages := range errs.FieldsOf(errs.FromValidator(err)) {
		if fields.Has(name) {
			continue
		}
		for _, message := range messages {
			fields.Add(name, message)
		}
	}
}

func assign(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
