// File: /controllers/comment_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoroutes-api/middleware"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type CommentController struct {
	comments *services.CommentService
	storage  services.FileStorage
	pageSize int
}

func NewCommentController(comments *services.CommentService, storage services.FileStorage, pageSize int) *CommentController {
	return &CommentController{comments: comments, storage: storage, pageSize: pageSize}
}

// GetComments godoc
// @Summary  List comments, oldest first
// @Tags     comments
// @Produce  json
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/comments/ [get]
func (cc *CommentController) GetComments(c *gin.Context) {
	comments, page, err := cc.comments.List(c.Request.Context(), pageRequest(c, cc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, cc.storage).Comments(comments))
}

// CreateComment godoc
// @Summary   Comment on a route
// @Tags      comments
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body services.CommentInput true "Comment"
// @Success   201 {object} CommentResponse
// @Failure   400 {object} utils.ErrorResponse
// @Router    /api/routes/comments/ [post]
func (cc *CommentController) CreateComment(c *gin.Context) {
	var in services.CommentInput
	if !bindJSON(c, &in) {
		return
	}

	comment, err := cc.comments.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendCreated(c, newSerializer(c, cc.storage).Comment(*comment))
}

// GetComment godoc
// @Summary  Comment by id
// @Tags     comments
// @Produce  json
// @Param    id path int true "Comment ID"
// @Success  200 {object} CommentResponse
// @Failure  404 {object} utils.DetailResponse
// @Router   /api/routes/comments/{id}/ [get]
func (cc *CommentController) GetComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment")
	if !ok {
		return
	}

	comment, err := cc.comments.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, cc.storage).Comment(*comment))
}

// UpdateComment godoc
// @Summary   Replace (PUT) or patch (PATCH) a comment; author only
// @Tags      comments
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path int                   true "Comment ID"
// @Param     body body services.CommentInput true "Comment fields"
// @Success   200 {object} CommentResponse
// @Failure   403 {object} utils.ErrorResponse
// @Router    /api/routes/comments/{id}/ [put]
// @Router    /api/routes/comments/{id}/ [patch]
func (cc *CommentController) UpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment")
	if !ok {
		return
	}

	var in services.CommentInput
	if !bindJSON(c, &in) {
		return
	}

	partial := c.Request.Method == http.MethodPatch
	comment, err := cc.comments.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, in, partial)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, cc.storage).Comment(*comment))
}

// DeleteComment godoc
// @Summary   Delete a comment; author only
// @Tags      comments
// @Security  BearerAuth
// @Param     id path int true "Comment ID"
// @Success   204
// @Failure   403 {object} utils.ErrorResponse
// @Router    /api/routes/comments/{id}/ [delete]
func (cc *CommentController) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment")
	if !ok {
		return
	}

	if err := cc.comments.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
