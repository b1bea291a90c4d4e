package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "test_session"

type env struct {
	router  *gin.Engine
	store   *session.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "middleware-secret", JWTExpiryDuration: time.Hour, JWTIssuer: "test"}
	tokens := services.NewTokenService(cfg)
	store := session.NewMemoryStore(10, time.Hour)
	manager := middleware.NewSessionManager(store, tokens)

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))),
		middleware.SessionCookies(cookieName, "cookie-secret", time.Hour, false),
		manager.Load(),
	)
	r.GET("/whoami", func(c *gin.Context) {
		sess, _ := middleware.GetSessionFromContext(c)
		userID, _ := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"sid": sess.ID, "user_id": userID, "method": middleware.GetAuthMethod(c)})
	})
	r.POST("/login", func(c *gin.Context) {
		sess, err := manager.Rotate(c)
		require.NoError(t, err)
		require.NoError(t, sess.Login("u1", "alice"))
		token, _, err := tokens.GenerateAccessToken(c.Request.Context(), &domain.User{UserID: "u1", Username: "alice"}, sess.ID)
		require.NoError(t, err)
		manager.Bind(c, sess)
		c.JSON(http.StatusOK, gin.H{"sid": sess.ID, "token": token})
	})
	r.POST("/logout", func(c *gin.Context) {
		manager.Destroy(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", middleware.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	entered, release := make(chan struct{}, 1), make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		sess, _ := middleware.GetSessionFromContext(c)
		entered <- struct{}{}
		<-release
		sess.CurrentPage = "alerts"
		c.Status(http.StatusOK)
	})
	r.GET("/logger", func(c *gin.Context) {
		if middleware.GetLoggerFromCtx(c.Request.Context()) == slog.Default() {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return &env{router: r, store: store, entered: entered, release: release}
}

func (e *env) do(t *testing.T, method, path string, cookie *http.Cookie, header ...string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	body := map[string]string{}
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func lastCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var out *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			out = c
		}
	}
	return out
}

func TestSessionCookieIsReused(t *testing.T) {
	e := newEnv(t)

	rec, first := e.do(t, http.MethodGet, "/whoami", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := lastCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	_, second := e.do(t, http.MethodGet, "/whoami", cookie)
	assert.Equal(t, first["sid"], second["sid"])
	assert.Empty(t, second["user_id"])

	_, fresh := e.do(t, http.MethodGet, "/whoami", nil)
	assert.NotEqual(t, first["sid"], fresh["sid"])
}

func TestLoginRotatesSessionID(t *testing.T) {
	e := newEnv(t)

	rec, anon := e.do(t, http.MethodGet, "/whoami", nil)
	cookie := lastCookie(rec)

	rec, login := e.do(t, http.MethodPost, "/login", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, anon["sid"], login["sid"])

	_, err := e.store.Get(context.Background(), anon["sid"])
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	stored, err := e.store.Get(context.Background(), login["sid"])
	require.NoError(t, err)
	assert.True(t, stored.Authenticated())

	_, me := e.do(t, http.MethodGet, "/whoami", lastCookie(rec))
	assert.Equal(t, "u1", me["user_id"])
	assert.Equal(t, middleware.AuthMethodCookie, me["method"])
}

func TestBearerTokenFollowsSession(t *testing.T) {
	e := newEnv(t)
	_, login := e.do(t, http.MethodPost, "/login", nil)
	bearer := "Bearer " + login["token"]

	rec, me := e.do(t, http.MethodGet, "/whoami", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, login["sid"], me["sid"])
	assert.Equal(t, middleware.AuthMethodBearer, me["method"])
	assert.Nil(t, lastCookie(rec), "bearer requests do not get a cookie")

	rec, _ = e.do(t, http.MethodPost, "/logout", nil, "Authorization", bearer)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := e.store.Get(context.Background(), login["sid"])
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	rec, _ = e.do(t, http.MethodGet, "/whoami", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWinsOverInFlightRequest(t *testing.T) {
	e := newEnv(t)
	_, login := e.do(t, http.MethodPost, "/login", nil)
	bearer := "Bearer " + login["token"]

	done := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/slow", nil)
		req.Header.Set("Authorization", bearer)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		done <- rec.Code
	}()
	<-e.entered

	rec, _ := e.do(t, http.MethodPost, "/logout", nil, "Authorization", bearer)
	require.Equal(t, http.StatusNoContent, rec.Code)

	close(e.release)
	assert.Equal(t, http.StatusOK, <-done)

	_, err := e.store.Get(context.Background(), login["sid"])
	assert.ErrorIs(t, err, session.ErrSessionNotFound, "a request finishing after logout must not save the session back")

	rec, _ = e.do(t, http.MethodGet, "/whoami", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidBearerIsRejected(t *testing.T) {
	e := newEnv(t)
	for _, header := range []string{"Bearer", "Basic abc", "Bearer not.a.jwt"} {
		rec, body := e.do(t, http.MethodGet, "/whoami", nil, "Authorization", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "Invalid or expired token", body["error"], header)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	e := newEnv(t)
	rec, login := e.do(t, http.MethodPost, "/login", nil)
	cookie := lastCookie(rec)

	rec, _ = e.do(t, http.MethodPost, "/logout", cookie)
	cleared := lastCookie(rec)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	_, err := e.store.Get(context.Background(), login["sid"])
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	rec, _ = e.do(t, http.MethodGet, "/private", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	e := newEnv(t)
	rec, body := e.do(t, http.MethodGet, "/private", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Permission denied: login required", body["error"])

	rec, _ = e.do(t, http.MethodPost, "/login", nil)
	rec, _ = e.do(t, http.MethodGet, "/private", lastCookie(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret", rec.Body.String())
}

func TestLoggerAndRequestID(t *testing.T) {
	e := newEnv(t)

	rec, _ := e.do(t, http.MethodGet, "/logger", nil, "X-Request-ID", "req-123")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec, _ = e.do(t, http.MethodGet, "/logger", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetLoggerFromCtxDefaults(t *testing.T) {
	assert.Equal(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := middleware.NewIPLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/limited", middleware.RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/other", middleware.RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, hit("/limited").Code)
	rec := hit("/limited")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, hit("/limited").Code)

	assert.Equal(t, http.StatusOK, hit("/other").Code, "routes are counted separately")
}

func TestNewIPLimiterRejectsBadRate(t *testing.T) {
	_, err := middleware.NewIPLimiter("lots")
	assert.Error(t, err)
}
