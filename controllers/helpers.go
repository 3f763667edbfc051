package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"motoroutes-api/errs"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

// pathID reads a numeric path parameter. Anything else is reported as a missing entity.
func pathID(c *gin.Context, name, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(errs.NotFound(entity))
		return 0, false
	}
	return uint(id), true
}

func pageRequest(c *gin.Context, size int) utils.PageRequest {
	return utils.PageRequest{Raw: c.Query("page"), Size: size}
}

// bindJSON decodes the body into dst and reports decoding failures per field.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(errs.FromBindError(err))
		return false
	}
	return true
}

// parseForm parses a multipart or urlencoded body capped at maxBytes and returns the first value per key.
func parseForm(c *gin.Context, maxBytes int64) (map[string]string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	err := c.Request.ParseMultipartForm(maxBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.FieldError("non_field_errors",
				fmt.Sprintf("Request body exceeds %d MB.", maxBytes>>20))
		}
		return nil, errs.FieldError("non_field_errors", "Multipart form parse error - "+err.Error())
	}

	values := make(map[string]string, len(c.Request.PostForm))
	for key, list := range c.Request.PostForm {
		if len(list) > 0 {
			values[key] = list[0]
		}
	}
	return values, nil
}

// formFile opens the named upload. The returned close func is never nil.
func formFile(c *gin.Context, name string) (*services.Upload, func(), error) {
	header, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}
	upload := &services.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
	return upload, func() { _ = file.Close() }, nil
}
