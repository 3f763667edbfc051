// File: /controllers/route_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoroutes-api/middleware"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type RouteController struct {
	routes    *services.RouteService
	locations *services.LocationService
	comments  *services.CommentService
	storage   services.FileStorage
	pageSize  int
}

func NewRouteController(
	routes *services.RouteService,
	locations *services.LocationService,
	comments *services.CommentService,
	storage services.FileStorage,
	pageSize int,
) *RouteController {
	return &RouteController{
		routes:    routes,
		locations: locations,
		comments:  comments,
		storage:   storage,
		pageSize:  pageSize,
	}
}

// GetRoutes godoc
// @Summary  List routes
// @Tags     routes
// @Produce  json
// @Param    search     query string false "Case-insensitive match on title or description"
// @Param    difficulty query string false "easy, moderate, hard or expert"
// @Param    ordering   query string false "created_at, distance or title; prefix with - for descending"
// @Param    page       query int    false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/ [get]
func (rc *RouteController) GetRoutes(c *gin.Context) {
	query := services.RouteQuery{
		Search:     c.Query("search"),
		Difficulty: c.Query("difficulty"),
		Ordering:   c.Query("ordering"),
	}

	listings, page, err := rc.routes.List(c.Request.Context(), query, pageRequest(c, rc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, rc.storage).RouteList(listings))
}

// CreateRoute godoc
// @Summary   Create a route owned by the caller
// @Tags      routes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body services.RouteInput true "Route"
// @Success   201 {object} RouteDetailResponse
// @Failure   400 {object} utils.ErrorResponse
// @Failure   401 {object} utils.DetailResponse
// @Router    /api/routes/ [post]
func (rc *RouteController) CreateRoute(c *gin.Context) {
	var in services.RouteInput
	if !bindJSON(c, &in) {
		return
	}

	route, err := rc.routes.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendCreated(c, newSerializer(c, rc.storage).RouteDetail(*route))
}

// GetRoute godoc
// @Summary  Route with nested locations, images and comments
// @Tags     routes
// @Produce  json
// @Param    id path int true "Route ID"
// @Success  200 {object} RouteDetailResponse
// @Failure  404 {object} utils.DetailResponse
// @Router   /api/routes/{id}/ [get]
func (rc *RouteController) GetRoute(c *gin.Context) {
	id, ok := pathID(c, "id", "Route")
	if !ok {
		return
	}

	route, err := rc.routes.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, rc.storage).RouteDetail(*route))
}

// UpdateRoute godoc
// @Summary   Replace (PUT) or patch (PATCH) a route; creator only
// @Tags      routes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path int                 true "Route ID"
// @Param     body body services.RouteInput true "Route fields"
// @Success   200 {object} RouteDetailResponse
// @Failure   403 {object} utils.ErrorResponse
// @Failure   404 {object} utils.DetailResponse
// @Router    /api/routes/{id}/ [put]
// @Router    /api/routes/{id}/ [patch]
func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id, ok := pathID(c, "id", "Route")
	if !ok {
		return
	}

	var in services.RouteInput
	if !bindJSON(c, &in) {
		return
	}

	partial := c.Request.Method == http.MethodPatch
	route, err := rc.routes.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, in, partial)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, rc.storage).RouteDetail(*route))
}

// DeleteRoute godoc
// @Summary   Delete a route with its locations, images and comments; creator only
// @Tags      routes
// @Security  BearerAuth
// @Param     id path int true "Route ID"
// @Success   204
// @Failure   403 {object} utils.ErrorResponse
// @Failure   404 {object} utils.DetailResponse
// @Router    /api/routes/{id}/ [delete]
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	id, ok := pathID(c, "id", "Route")
	if !ok {
		return
	}

	if err := rc.routes.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUserRoutes godoc
// @Summary  Routes created by a user
// @Tags     routes
// @Produce  json
// @Param    user_id path int true "User ID"
// @Param    page    query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/user/{user_id}/ [get]
func (rc *RouteController) GetUserRoutes(c *gin.Context) {
	userID, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}

	listings, page, err := rc.routes.ListByUser(c.Request.Context(), userID, pageRequest(c, rc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, rc.storage).RouteList(listings))
}

// GetRouteLocations godoc
// @Summary  Locations pinned to a route
// @Tags     routes
// @Produce  json
// @Param    id   path  int true  "Route ID"
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/{id}/locations/ [get]
func (rc *RouteController) GetRouteLocations(c *gin.Context) {
	routeID, ok := pathID(c, "id", "Route")
	if !ok {
		return
	}

	locations, page, err := rc.locations.ListByRoute(c.Request.Context(), routeID, pageRequest(c, rc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, rc.storage).Locations(locations))
}

// GetRouteComments godoc
// @Summary  Comments on a route, oldest first
// @Tags     routes
// @Produce  json
// @Param    id   path  int true  "Route ID"
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/{id}/comments/ [get]
func (rc *RouteController) GetRouteComments(c *gin.Context) {
	routeID, ok := pathID(c, "id", "Route")
	if !ok {
		return
	}

	comments, page, err := rc.comments.ListByRoute(c.Request.Context(), routeID, pageRequest(c, rc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, rc.storage).Comments(comments))
}
