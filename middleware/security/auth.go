package security

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ChatRoom/logger"
	"ChatRoom/service/session"
	jwtsec "ChatRoom/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CtxUserKey holds the authenticated user id (int64) in the gin context.
const CtxUserKey = "userId"

type Options struct {
	CookieName string
	Secret     string
	Sessions   session.Store
	// Tokens enables "Authorization: Bearer" when its secret is set.
	Tokens  jwtsec.Options
	Timeout time.Duration
}

// Middleware admits requests carrying a live session cookie or a valid bearer
// token and refuses everything else with 401 before any handler runs.
func Middleware(opts Options) gin.HandlerFunc {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return func(c *gin.Context) {
		userID, err := authenticate(c, opts)
		if err != nil {
			logger.Debug("unauthenticated request",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote", c.ClientIP()),
				zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(CtxUserKey, userID)
		c.Next()
	}
}

func authenticate(c *gin.Context, opts Options) (int64, error) {
	if len(opts.Tokens.Secret) > 0 {
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" &&
			strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return jwtsec.Verify(opts.Tokens, strings.TrimSpace(authz[len("bearer "):]))
		}
	}

	if opts.Sessions == nil {
		return 0, errors.New("no session store")
	}
	ck, err := c.Request.Cookie(opts.CookieName)
	if err != nil {
		return 0, errors.Wrap(err, "session cookie")
	}
	sid, ok := Unsign(ck.Value, opts.Secret)
	if !ok {
		return 0, errors.New("bad cookie signature")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
	defer cancel()
	p, err := opts.Sessions.Lookup(ctx, sid)
	if err != nil {
		return 0, err
	}
	return p.UserID, nil
}

// UserID returns the id stored by Middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
