package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ChatRoom/service/session"
	jwtsec "ChatRoom/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "keyboard cat"

func newEngine(opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", Middleware(opts), func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id})
	})
	return r
}

func TestMiddleware(t *testing.T) {
	store := session.NewMemStore()
	store.PutUser("live", 5)
	tokens := jwtsec.DefaultOptions([]byte("jwt-secret"))
	tok, _, err := jwtsec.Generate(tokens, 8)
	require.NoError(t, err)

	r := newEngine(Options{CookieName: "sId", Secret: testSecret, Sessions: store, Tokens: tokens})

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
		body   string
	}{
		{name: "no credentials", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{
			name: "signed session cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "sId", Value: Sign("live", testSecret)})
			},
			status: http.StatusOK,
			body:   `{"user":5}`,
		},
		{
			name: "bad signature",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "sId", Value: Sign("live", "wrong")})
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "unknown session",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "sId", Value: Sign("gone", testSecret)})
			},
			status: http.StatusUnauthorized,
		},
		{
			name:   "bearer token",
			setup:  func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) },
			status: http.StatusOK,
			body:   `{"user":8}`,
		},
		{
			name:   "bad bearer token",
			setup:  func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") },
			status: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestMiddleware_TokensDisabled(t *testing.T) {
	r := newEngine(Options{CookieName: "sId", Secret: testSecret, Sessions: session.NewMemStore()})
	tok, _, err := jwtsec.Generate(jwtsec.DefaultOptions([]byte("x")), 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
