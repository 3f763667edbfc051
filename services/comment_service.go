// File: /services/comment_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
	"motoroutes-api/utils"
)

type CommentInput struct {
	Text  *string `json:"text"`
	Route PKValue `json:"route"`
}

type CommentService struct {
	comments *repositories.CommentRepository
	routes   *repositories.RouteRepository
	logger   zerolog.Logger
}

func NewCommentService(comments *repositories.CommentRepository, routes *repositories.RouteRepository) *CommentService {
	return &CommentService{
		comments: comments,
		routes:   routes,
		logger:   log.With().Str("service", "comment").Logger(),
	}
}

// List returns every comment, oldest first.
func (s *CommentService) List(ctx context.Context, page utils.PageRequest) ([]models.Comment, utils.Page, error) {
	return s.comments.List(ctx, 0, page)
}

func (s *CommentService) ListByRoute(ctx context.Context, routeID uint, page utils.PageRequest) ([]models.Comment, utils.Page, error) {
	return s.comments.List(ctx, routeID, page)
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errs.NotFound("Comment")
		}
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, identity models.Identity, in CommentInput) (*models.Comment, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	comment := &models.Comment{}
	if err := s.apply(ctx, comment, in, false); err != nil {
		return nil, err
	}
	comment.AuthorID = identity.UserID

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info().Uint("comment_id", comment.ID).Uint("route_id", comment.RouteID).Msg("comment created")
	return s.Get(ctx, comment.ID)
}

func (s *CommentService) Update(ctx context.Context, identity models.Identity, id uint, in CommentInput, partial bool) (*models.Comment, error) {
	comment, err := s.owned(ctx, identity, id, "You can only edit your own comments")
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, comment, in, partial); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.Get(ctx, comment.ID)
}

func (s *CommentService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	if _, err := s.owned(ctx, identity, id, "You can only delete your own comments"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) owned(ctx context.Context, identity models.Identity, id uint, forbidden string) (*models.Comment, error) {
	if !identity.IsAuthenticated() {
		return nil, errs.Unauthorized("Authentication credentials were not provided.")
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.Owns(comment.AuthorID) {
		return nil, errs.Forbidden(forbidden)
	}
	return comment, nil
}

func (s *CommentService) apply(ctx context.Context, comment *models.Comment, in CommentInput, partial bool) error {
	fields := errs.FieldErrors{}

	if !partial || in.Text != nil {
		requireString(fields, "text", in.Text)
	}

	switch {
	case !in.Route.Set:
		if !partial {
			fields.Add("route", "This field is required.")
		}
	case in.Route.Null:
		fields.Add("route", "This field may not be null.")
	default:
		if err := checkPK(ctx, fields, "route", in.Route, s.routes.Exists); err != nil {
			return err
		}
	}

	if err := fields.Err(); err != nil {
		return err
	}

	assign(&comment.Text, in.Text)
	if id := in.Route.Ptr(); id != nil {
		comment.RouteID = *id
	}
	return nil
}
