// File: /controllers/location_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoroutes-api/middleware"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type LocationController struct {
	locations *services.LocationService
	storage   services.FileStorage
	pageSize  int
}

func NewLocationController(locations *services.LocationService, storage services.FileStorage, pageSize int) *LocationController {
	return &LocationController{locations: locations, storage: storage, pageSize: pageSize}
}

// GetLocations godoc
// @Summary  List points of interest, newest first
// @Tags     locations
// @Produce  json
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/locations/ [get]
func (lc *LocationController) GetLocations(c *gin.Context) {
	locations, page, err := lc.locations.List(c.Request.Context(), pageRequest(c, lc.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, lc.storage).Locations(locations))
}

// CreateLocation godoc
// @Summary   Create a point of interest owned by the caller
// @Tags      locations
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body services.LocationInput true "Location"
// @Success   201 {object} LocationResponse
// @Failure   400 {object} utils.ErrorResponse
// @Router    /api/routes/locations/ [post]
func (lc *LocationController) CreateLocation(c *gin.Context) {
	var in services.LocationInput
	if !bindJSON(c, &in) {
		return
	}

	location, err := lc.locations.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendCreated(c, newSerializer(c, lc.storage).Location(*location))
}

// GetLocation godoc
// @Summary  Point of interest by id
// @Tags     locations
// @Produce  json
// @Param    id path int true "Location ID"
// @Success  200 {object} LocationResponse
// @Failure  404 {object} utils.DetailResponse
// @Router   /api/routes/locations/{id}/ [get]
func (lc *LocationController) GetLocation(c *gin.Context) {
	id, ok := pathID(c, "id", "Location")
	if !ok {
		return
	}

	location, err := lc.locations.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, lc.storage).Location(*location))
}

// UpdateLocation godoc
// @Summary   Replace (PUT) or patch (PATCH) a point of interest; creator only
// @Tags      locations
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path int                    true "Location ID"
// @Param     body body services.LocationInput true "Location fields"
// @Success   200 {object} LocationResponse
// @Failure   403 {object} utils.ErrorResponse
// @Router    /api/routes/locations/{id}/ [put]
// @Router    /api/routes/locations/{id}/ [patch]
func (lc *LocationController) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c, "id", "Location")
	if !ok {
		return
	}

	var in services.LocationInput
	if !bindJSON(c, &in) {
		return
	}

	partial := c.Request.Method == http.MethodPatch
	location, err := lc.locations.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, in, partial)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, lc.storage).Location(*location))
}

// DeleteLocation godoc
// @Summary   Delete a point of interest and its images; creator only
// @Tags      locations
// @Security  BearerAuth
// @Param     id path int true "Location ID"
// @Success   204
// @Failure   403 {object} utils.ErrorResponse
// @Router    /api/routes/locations/{id}/ [delete]
func (lc *LocationController) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c, "id", "Location")
	if !ok {
		return
	}

	if err := lc.locations.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
