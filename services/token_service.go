// File: /services/token_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carried by both token kinds; TokenType tells them apart.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenService struct {
	users      *repositories.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

func NewTokenService(users *repositories.UserRepository, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		users:      users,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     log.With().Str("service", "token").Logger(),
	}
}

// Obtain checks the credentials and issues an access/refresh pair.
func (s *TokenService) Obtain(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.Unauthorized("No active account found with the given credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("password mismatch")
		return nil, errs.Unauthorized("No active account found with the given credentials")
	}

	access, err := s.sign(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token for a valid refresh token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if _, err := s.users.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", errs.Unauthorized("User not found")
		}
		return "", err
	}
	return s.sign(claims.UserID, tokenTypeAccess, s.accessTTL)
}

// Authenticate resolves an access token to the identity of an existing user.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (models.Identity, error) {
	claims, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return models.Identity{}, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Identity{}, errs.Unauthorized("User not found")
		}
		return models.Identity{}, err
	}
	return models.Identity{UserID: user.ID, Username: user.Username}, nil
}

func (s *TokenService) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(raw, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errs.Unauthorized("Given token not valid for any token type")
	}
	if claims.TokenType != tokenType {
		return nil, errs.Unauthorized("Token has wrong type")
	}
	return claims, nil
}
