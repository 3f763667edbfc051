// File: /middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"motoroutes-api/models"
	"motoroutes-api/utils"
)

const identityKey = "identity"

// Authenticator resolves an access token to a caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.Identity, error)
}

// Authenticate attaches the caller identity for a Bearer token. Requests without
// one stay anonymous; a token that does not verify is rejected with 401.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			c.Next()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers before the handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAuthenticated() {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			utils.SendDetail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by Authenticate, or the anonymous identity.
func CurrentIdentity(c *gin.Context) models.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(models.Identity); ok {
			return identity
		}
	}
	return models.Identity{}
}
