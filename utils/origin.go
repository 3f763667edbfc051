package utils

import "github.com/gin-gonic/gin"

// SchemeKey holds the scheme resolved by middleware.RequestScheme.
const SchemeKey = "request_scheme"

// RequestScheme is the scheme the client used, as resolved for this request.
func RequestScheme(c *gin.Context) string {
	if scheme := c.GetString(SchemeKey); scheme != "" {
		return scheme
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// RequestOrigin builds "scheme://host" for absolute links in responses.
func RequestOrigin(c *gin.Context) string {
	return RequestScheme(c) + "://" + c.Request.Host
}
