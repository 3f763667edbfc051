// File: /utils/response.go
package utils

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   int                 `json:"code,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// DetailResponse is the body used for authentication and pagination failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendValidationError(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  "Validation failed",
		Code:   http.StatusBadRequest,
		Fields: fields,
	})
}

func SendDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, DetailResponse{Detail: detail})
}

// SendPage writes the paginated envelope with absolute next/previous links.
func SendPage(c *gin.Context, page Page, results interface{}) {
	response := PaginatedResponse{
		Count:   page.Total,
		Results: results,
	}
	if page.HasNext() {
		link := pageURL(c, page.Number+1)
		response.Next = &link
	}
	if page.HasPrevious() {
		link := pageURL(c, page.Number-1)
		response.Previous = &link
	}
	c.JSON(http.StatusOK, response)
}

func pageURL(c *gin.Context, number int) string {
	query := c.Request.URL.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}

	u := url.URL{
		Scheme:   RequestScheme(c),
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func SendOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
