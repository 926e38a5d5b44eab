package middleware

import (
	"github.com/gin-gonic/gin"

	security "AProject/middleware/security"
)

// RouteOpt controls per-route behavior.
type RouteOpt struct {
	// IsAuth requires a verified bearer token before the handler runs.
	IsAuth bool
}

var authMW gin.HandlerFunc

// Configure installs the shared auth middleware used by routes registered
// with IsAuth. Must run before route registration.
func Configure(opts security.Options) {
	authMW = security.Middleware(opts)
}

func POST(r *gin.Engine, path string, handler gin.HandlerFunc, opt RouteOpt) {
	handle(r, "POST", path, handler, opt)
}

func GET(r *gin.Engine, path string, handler gin.HandlerFunc, opt RouteOpt) {
	handle(r, "GET", path, handler, opt)
}

func handle(r *gin.Engine, method, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth && authMW != nil {
		r.Handle(method, path, authMW, handler)
		return
	}
	r.Handle(method, path, handler)
}
