package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	errs "AProject/tools/errs"
	security "AProject/tools/security"
)

// Context keys the downstream handlers read the verified identity from.
const (
	CtxUserIDKey   = "authUserId"   // int64
	CtxUsernameKey = "authUsername" // string
)

type Options struct {
	JWT security.Options
}

// Middleware verifies a `Authorization: Bearer <token>` header and stores
// the resolved claims in the gin context.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := strings.TrimSpace(c.GetHeader("Authorization"))
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenMissing)
			return
		}
		token := strings.TrimSpace(authz[len("bearer "):])

		claims, err := security.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Next()
	}
}

// UserID reads the authenticated user id set by Middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
