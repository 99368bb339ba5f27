package middleware

import (
	"github.com/gin-gonic/gin"
)

type RouteOpt struct {
	// Auth runs before the handler when set.
	Auth gin.HandlerFunc
}

func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.Auth != nil {
		r.GET(path, opt.Auth, handler)
	} else {
		r.GET(path, handler)
	}
}
