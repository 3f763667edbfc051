// File: /controllers/user_controller.go
package controllers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"motoroutes-api/errs"
	"motoroutes-api/middleware"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type UserController struct {
	users       *services.UserService
	storage     services.FileStorage
	pageSize    int
	maxUploadMB int
	logger      zerolog.Logger
}

func NewUserController(users *services.UserService, storage services.FileStorage, pageSize, maxUploadMB int) *UserController {
	return &UserController{
		users:       users,
		storage:     storage,
		pageSize:    pageSize,
		maxUploadMB: maxUploadMB,
		logger:      log.With().Str("controller", "user").Logger(),
	}
}

// Register godoc
// @Summary  Register a new account
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body services.RegisterInput true "Account"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} utils.ErrorResponse
// @Router   /api/users/register/ [post]
func (uc *UserController) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendCreated(c, gin.H{
		"user":    newSerializer(c, uc.storage).User(*user),
		"message": "User created successfully",
	})
}

// GetProfile godoc
// @Summary   Current user's profile
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} UserResponse
// @Failure   401 {object} utils.DetailResponse
// @Router    /api/users/profile/ [get]
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.users.Profile(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, uc.storage).User(*user))
}

// profileJSON adds the avatar field, which JSON bodies may only clear.
type profileJSON struct {
	services.ProfileInput
	Avatar utils.Optional[json.RawMessage] `json:"avatar"`
}

// UpdateProfile godoc
// @Summary   Update the current user's profile (JSON or multipart with an avatar file)
// @Tags      users
// @Accept    json,mpfd
// @Produce   json
// @Security  BearerAuth
// @Param     body body services.ProfileInput false "Profile fields"
// @Success   200 {object} UserResponse
// @Failure   400 {object} utils.ErrorResponse
// @Router    /api/users/profile/ [put]
// @Router    /api/users/profile/ [patch]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var (
		in      services.ProfileInput
		cleanup = func() {}
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") || c.ContentType() == "application/x-www-form-urlencoded" {
		var err error
		in, cleanup, err = uc.profileFromForm(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
	} else {
		var body profileJSON
		if !bindJSON(c, &body) {
			return
		}
		in = body.ProfileInput
		if body.Avatar.Set {
			if !body.Avatar.Null {
				_ = c.Error(errs.FieldError("avatar", "The submitted data was not a file. Check the encoding type on the form."))
				return
			}
			in.ClearAvatar = true
		}
	}
	defer cleanup()

	user, err := uc.users.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	uc.logger.Debug().
		Uint("user_id", user.ID).
		Bool("avatar_uploaded", in.Avatar != nil).
		Bool("avatar_cleared", in.ClearAvatar).
		Msg("profile updated")
	utils.SendOK(c, newSerializer(c, uc.storage).User(*user))
}

func (uc *UserController) profileFromForm(c *gin.Context) (services.ProfileInput, func(), error) {
	var in services.ProfileInput

	values, err := parseForm(c, int64(uc.maxUploadMB)<<20)
	if err != nil {
		return in, func() {}, err
	}

	text := func(key string) *string {
		if v, ok := values[key]; ok {
			return &v
		}
		return nil
	}
	in.Email = text("email")
	in.FirstName = text("first_name")
	in.LastName = text("last_name")
	in.Bio = text("bio")
	in.Country = text("country")
	in.MotorcycleType = text("motorcycle_type")
	in.MotorcycleBrand = text("motorcycle_brand")
	in.MotorcycleModel = text("motorcycle_model")

	if raw, ok := values["motorcycle_year"]; ok {
		if raw == "" {
			in.MotorcycleYear = utils.Null[int]()
		} else {
			year, err := strconv.Atoi(raw)
			if err != nil {
				return in, func() {}, errs.FieldError("motorcycle_year", "A valid integer is required.")
			}
			in.MotorcycleYear = utils.Some(year)
		}
	}

	upload, cleanup, err := formFile(c, "avatar")
	if err != nil {
		return in, cleanup, err
	}
	in.Avatar = upload
	if v, ok := values["avatar"]; ok && v == "" && upload == nil {
		in.ClearAvatar = true
	}
	return in, cleanup, nil
}

// GetUser godoc
// @Summary  Public profile of a user
// @Tags     users
// @Produce  json
// @Param    id path int true "User ID"
// @Success  200 {object} UserResponse
// @Failure  404 {object} utils.DetailResponse
// @Router   /api/users/{id}/ [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "User")
	if !ok {
		return
	}

	user, err := uc.users.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, uc.storage).User(*user))
}

// GetUsers godoc
// @Summary  List users
// @Tags     users
// @Produce  json
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/users/ [get]
func (uc *UserController) GetUsers(c *gin.Context) {
	users, page, err := uc.users.List(c.Request.Context(), pageRequest(c, uc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, uc.storage).Users(users))
}
