package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionIDField is the only value kept in the signed cookie; everything else
// lives in the server-side store.
const sessionIDField = "sid"

// SessionCookies installs the signed cookie that carries the session id.
func SessionCookies(name, secret string, ttl time.Duration, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(name, store)
}

// SessionManager resolves the session of every request, either from a bearer
// token whose jti names the session or from the session cookie.
type SessionManager struct {
	store  session.Store
	tokens portssvc.TokenSvcFacade
	now    func() time.Time
}

func NewSessionManager(store session.Store, tokens portssvc.TokenSvcFacade) *SessionManager {
	return &SessionManager{store: store, tokens: tokens, now: time.Now}
}

// Load must run after SessionCookies. A bad bearer token aborts with 401; a
// missing or unknown cookie starts a fresh anonymous session.
func (m *SessionManager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		var sess *session.Context
		if header := c.GetHeader("Authorization"); header != "" {
			s, err := m.fromBearer(c.Request.Context(), header)
			if err != nil {
				logger.Warn("Bearer authentication failed", slog.String("error", err.Error()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.Set(string(authMethodKey), AuthMethodBearer)
			sess = s
		} else {
			sess = m.fromCookie(c)
			if sess.Authenticated() {
				c.Set(string(authMethodKey), AuthMethodCookie)
			}
		}

		m.attach(c, sess)
		c.Next()
		m.persist(c)
	}
}

func (m *SessionManager) fromBearer(ctx context.Context, header string) (*session.Context, error) {
	raw, err := bearerToken(header)
	if err != nil {
		return nil, err
	}
	id, err := m.tokens.ParseAccessToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, id.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", apperrors.ErrUnauthorized, id.SessionID, err)
	}
	if !sess.Authenticated() || sess.UserID != id.UserID {
		return nil, fmt.Errorf("%w: session %s is not bound to the token subject", apperrors.ErrUnauthorized, id.SessionID)
	}
	return sess, nil
}

func (m *SessionManager) fromCookie(c *gin.Context) *session.Context {
	cs := sessions.Default(c)
	if sid, _ := cs.Get(sessionIDField).(string); sid != "" {
		sess, err := m.store.Get(c.Request.Context(), sid)
		if err == nil {
			return sess
		}
		if !errors.Is(err, session.ErrSessionNotFound) {
			GetLoggerFromContext(c).Error("Failed to load session, starting a new one", slog.String("error", err.Error()))
		}
	}

	sess := session.New(uuid.NewString(), m.now())
	c.Set(string(freshKey), true)
	cs.Set(sessionIDField, sess.ID)
	if err := cs.Save(); err != nil {
		GetLoggerFromContext(c).Error("Failed to write session cookie", slog.String("error", err.Error()))
	}
	return sess
}

func (m *SessionManager) attach(c *gin.Context, sess *session.Context) {
	c.Set(string(sessionKey), sess)
	logger := GetLoggerFromContext(c).With(slog.String("session_id", sess.ID))
	ctx := c.Request.Context()
	if sess.Authenticated() {
		c.Set(string(userIDKey), sess.UserID)
		ctx = context.WithValue(ctx, userIDKey, sess.UserID)
		logger = logger.With(slog.String("user_id", sess.UserID))
	}
	c.Request = c.Request.WithContext(ctx)
	setLogger(c, logger)
}

func (m *SessionManager) persist(c *gin.Context) {
	sess, ok := GetSessionFromContext(c)
	if !ok {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if c.GetBool(string(destroyedKey)) {
		if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			GetLoggerFromCtx(ctx).Error("Failed to delete session", slog.String("error", err.Error()))
		}
		return
	}
	sess.LastSeenAt = m.now()
	save := m.store.Update
	if c.GetBool(string(freshKey)) {
		save = m.store.Save
	}
	err := save(ctx, sess)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		// logged out or rotated away while this request ran
		GetLoggerFromCtx(ctx).Debug("Session ended during request, changes dropped")
	case err != nil:
		GetLoggerFromCtx(ctx).Error("Failed to save session", slog.String("error", err.Error()))
	}
}

// Rotate gives the current session a fresh id. Call it before binding a user at
// login so an id handed out to an anonymous visitor never becomes authenticated.
func (m *SessionManager) Rotate(c *gin.Context) (*session.Context, error) {
	sess, ok := GetSessionFromContext(c)
	if !ok {
		return nil, errors.New("no session in context")
	}
	oldID := sess.ID
	sess.ID = uuid.NewString()
	c.Set(string(freshKey), true)
	if err := m.store.Delete(c.Request.Context(), oldID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	if GetAuthMethod(c) != AuthMethodBearer {
		cs := sessions.Default(c)
		cs.Set(sessionIDField, sess.ID)
		if err := cs.Save(); err != nil {
			return nil, fmt.Errorf("failed to write session cookie: %w", err)
		}
	}
	setLogger(c, GetLoggerFromContext(c).With(slog.String("rotated_session_id", sess.ID)))
	return sess, nil
}

// Bind marks the user as logged in on the request after a successful login.
func (m *SessionManager) Bind(c *gin.Context, sess *session.Context) {
	c.Set(string(userIDKey), sess.UserID)
	if GetAuthMethod(c) == "" {
		c.Set(string(authMethodKey), AuthMethodCookie)
	}
	ctx := context.WithValue(c.Request.Context(), userIDKey, sess.UserID)
	c.Request = c.Request.WithContext(ctx)
	setLogger(c, GetLoggerFromContext(c).With(slog.String("user_id", sess.UserID)))
}

// Destroy logs the session out and removes it from the store once the request
// completes. Bearer tokens carrying its id stop working at the same moment.
func (m *SessionManager) Destroy(c *gin.Context) {
	sess, ok := GetSessionFromContext(c)
	if !ok {
		return
	}
	sess.Logout()
	c.Set(string(destroyedKey), true)
	c.Set(string(userIDKey), "")
	if GetAuthMethod(c) != AuthMethodBearer {
		cs := sessions.Default(c)
		cs.Clear()
		cs.Options(sessions.Options{Path: "/", MaxAge: -1})
		if err := cs.Save(); err != nil {
			GetLoggerFromContext(c).Error("Failed to clear session cookie", slog.String("error", err.Error()))
		}
	}
}
