// File: /controllers/auth_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"

	"motoroutes-api/errs"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type AuthController struct {
	tokens *services.TokenService
}

func NewAuthController(tokens *services.TokenService) *AuthController {
	return &AuthController{tokens: tokens}
}

type TokenRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type RefreshRequest struct {
	Refresh *string `json:"refresh"`
}

// ObtainToken godoc
// @Summary  Obtain an access/refresh token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body TokenRequest true "Credentials"
// @Success  200 {object} services.TokenPair
// @Failure  401 {object} utils.DetailResponse
// @Router   /api/auth/token/ [post]
func (ac *AuthController) ObtainToken(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	fields := errs.FieldErrors{}
	if req.Username == nil || *req.Username == "" {
		fields.Add("username", "This field is required.")
	}
	if req.Password == nil || *req.Password == "" {
		fields.Add("password", "This field is required.")
	}
	if err := fields.Err(); err != nil {
		_ = c.Error(err)
		return
	}

	pair, err := ac.tokens.Obtain(c.Request.Context(), *req.Username, *req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, pair)
}

// RefreshToken godoc
// @Summary  Exchange a refresh token for a new access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RefreshRequest true "Refresh token"
// @Success  200 {object} map[string]string
// @Failure  401 {object} utils.DetailResponse
// @Router   /api/auth/token/refresh/ [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Refresh == nil || *req.Refresh == "" {
		_ = c.Error(errs.FieldError("refresh", "This field is required."))
		return
	}

	access, err := ac.tokens.Refresh(c.Request.Context(), *req.Refresh)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, gin.H{"access": access})
}
