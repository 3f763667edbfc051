// File: /controllers/image_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoroutes-api/middleware"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type ImageController struct {
	images      *services.ImageService
	storage     services.FileStorage
	pageSize    int
	maxUploadMB int
}

func NewImageController(images *services.ImageService, storage services.FileStorage, pageSize, maxUploadMB int) *ImageController {
	return &ImageController{images: images, storage: storage, pageSize: pageSize, maxUploadMB: maxUploadMB}
}

// GetImages godoc
// @Summary  List images, newest first
// @Tags     images
// @Produce  json
// @Param    page query int false "Page number"
// @Success  200 {object} utils.PaginatedResponse
// @Router   /api/routes/images/ [get]
func (ic *ImageController) GetImages(c *gin.Context) {
	images, page, err := ic.images.List(c.Request.Context(), pageRequest(c, ic.pageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendPage(c, page, newSerializer(c, ic.storage).Images(images))
}

// UploadImage godoc
// @Summary   Upload an image for a route and/or location
// @Tags      images
// @Accept    mpfd
// @Produce   json
// @Security  BearerAuth
// @Param     image    formData file   true  "Image file"
// @Param     caption  formData string false "Caption"
// @Param     route    formData string false "Route ID"
// @Param     location formData string false "Location ID"
// @Success   201 {object} ImageResponse
// @Failure   400 {object} utils.ErrorResponse
// @Router    /api/routes/images/ [post]
func (ic *ImageController) UploadImage(c *gin.Context) {
	values, err := parseForm(c, int64(ic.maxUploadMB)<<20)
	if err != nil {
		_ = c.Error(err)
		return
	}

	upload, cleanup, err := formFile(c, "image")
	defer cleanup()
	if err != nil {
		_ = c.Error(err)
		return
	}

	in := services.ImageInputFromForm(values, upload)
	image, err := ic.images.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendCreated(c, newSerializer(c, ic.storage).Image(*image))
}

// GetImage godoc
// @Summary  Image by id
// @Tags     images
// @Produce  json
// @Param    id path int true "Image ID"
// @Success  200 {object} ImageResponse
// @Failure  404 {object} utils.DetailResponse
// @Router   /api/routes/images/{id}/ [get]
func (ic *ImageController) GetImage(c *gin.Context) {
	id, ok := pathID(c, "id", "Image")
	if !ok {
		return
	}

	image, err := ic.images.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SendOK(c, newSerializer(c, ic.storage).Image(*image))
}

// DeleteImage godoc
// @Summary   Delete an image; any authenticated user
// @Tags      images
// @Security  BearerAuth
// @Param     id path int true "Image ID"
// @Success   204
// @Failure   401 {object} utils.DetailResponse
// @Failure   404 {object} utils.DetailResponse
// @Router    /api/routes/images/{id}/ [delete]
func (ic *ImageController) DeleteImage(c *gin.Context) {
	id, ok := pathID(c, "id", "Image")
	if !ok {
		return
	}

	if err := ic.images.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
