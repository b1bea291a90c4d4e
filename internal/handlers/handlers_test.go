package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/adapters/sheets"
	"github.com/SscSPs/sheet_dashboard/internal/core/defaults"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/SscSPs/sheet_dashboard/internal/core/pages"
	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/SscSPs/sheet_dashboard/internal/dto"
	"github.com/SscSPs/sheet_dashboard/internal/handlers"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/SscSPs/sheet_dashboard/internal/platform/config"
	"github.com/SscSPs/sheet_dashboard/internal/repositories/memory"
	"github.com/SscSPs/sheet_dashboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

// recordingNotifier keeps the last reset token per email.
type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *recordingNotifier) NotifyPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[email] = token
	return nil
}

func (n *recordingNotifier) token(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

// client replays cookies between requests like a browser would.
type client struct {
	s       *HandlersTestSuite
	cookies map[string]*http.Cookie
}

func (cl *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		cl.s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	cl.s.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return rec
}

// viewResponse is the subset of a rendered page the tests inspect. Cells are
// left undecoded.
type viewResponse struct {
	PageID   string              `json:"page_id"`
	ReadOnly bool                `json:"read_only"`
	Settings domain.PageSettings `json:"settings"`
	Info     pages.DataInfo      `json:"info"`
	Messages []pages.Message     `json:"messages"`
}

func decode[T any](s *HandlersTestSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type HandlersTestSuite struct {
	suite.Suite
	router   *gin.Engine
	notifier *recordingNotifier
	cfg      *config.Config
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-jwt-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "sheet-dashboard-test",
		SessionSecret:     "test-session-secret",
		SessionTTL:        time.Hour,
		SessionCookieName: "dashboard_session",
		LoginRateLimit:    "1000-M",
		IsProduction:      true,
	}
}

func newRouter(cfg *config.Config, notifier portssvc.ResetNotifier) *gin.Engine {
	repos := memory.NewRepositoryProvider()
	container := &portssvc.ServiceContainer{
		Auth:     services.NewAuthService(repos.UserRepo, repos.ResetTokenRepo, services.WithPasswordHasher(&utils.PasswordHasher{Iterations: 1000})),
		Token:    services.NewTokenService(cfg),
		Settings: services.NewSettingsService(repos.SettingsRepo),
		Sheet:    services.NewSheetService(nil, sheets.NewSampleSource()),
		Notifier: notifier,
	}
	sessions := middleware.NewSessionManager(session.NewMemoryStore(100, cfg.SessionTTL), container.Token)

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))), gin.Recovery())
	if err := handlers.RegisterRoutes(r, cfg, container, sessions, nil); err != nil {
		panic(err)
	}
	return r
}

func (s *HandlersTestSuite) SetupTest() {
	s.cfg = testConfig()
	s.notifier = &recordingNotifier{tokens: map[string]string{}}
	s.router = newRouter(s.cfg, s.notifier)
}

func (s *HandlersTestSuite) newClient() *client {
	return &client{s: s, cookies: map[string]*http.Cookie{}}
}

func (s *HandlersTestSuite) signupAndLogin(cl *client, username string) dto.LoginResponse {
	rec := cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: username, Email: username + "@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = cl.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: username, Password: "correct-horse"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.LoginResponse](s, rec)
}

func (s *HandlersTestSuite) TestHealth() {
	rec := s.newClient().do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())
}

func (s *HandlersTestSuite) TestAnonymousReadsDefaults() {
	rec := s.newClient().do(http.MethodGet, "/api/v1/settings/alerts", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := decode[dto.SettingsResponse](s, rec)
	s.True(resp.ReadOnly)
	s.Equal(defaults.Resolve(defaults.PageAlerts), resp.Settings)
	s.Empty(resp.Warning)
}

func (s *HandlersTestSuite) TestAnonymousSaveIsRejected() {
	cl := s.newClient()
	rec := cl.do(http.MethodPut, "/api/v1/settings/alerts", defaults.Resolve(defaults.PageAlerts))
	s.Equal(http.StatusForbidden, rec.Code)

	rec = cl.do(http.MethodPut, "/api/v1/settings/alerts", defaults.Resolve(defaults.PageAlerts), "Authorization", "Bearer forged")
	s.Equal(http.StatusUnauthorized, rec.Code, "a bad token is an authentication failure")
}

func (s *HandlersTestSuite) TestUnknownSettingsPage() {
	rec := s.newClient().do(http.MethodGet, "/api/v1/settings/nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	rec = s.newClient().do(http.MethodGet, "/api/v1/settings/settings", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersTestSuite) TestLoginSaveAndReload() {
	cl := s.newClient()
	login := s.signupAndLogin(cl, "alice")
	s.NotEmpty(login.Token)
	s.Equal(session.StateAuthenticated, login.Session.State)
	s.True(login.Session.Authenticated)

	want := defaults.Resolve(defaults.PageAlerts)
	from := domain.NewDate(2024, time.January, 3)
	want.Filters = map[string]domain.ColumnFilter{"Date": {Kind: domain.FilterDate, From: &from}}
	want.SortBy = "Date"

	rec := cl.do(http.MethodPut, "/api/v1/settings/alerts", want)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(want, decode[dto.SettingsResponse](s, rec).Settings)

	rec = cl.do(http.MethodGet, "/api/v1/settings/alerts", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	got := decode[dto.SettingsResponse](s, rec)
	s.False(got.ReadOnly)
	s.Equal(want, got.Settings)

	// the bearer token alone reaches the same session
	rec = s.newClient().do(http.MethodGet, "/api/v1/settings/alerts", nil, "Authorization", "Bearer "+login.Token)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(want, decode[dto.SettingsResponse](s, rec).Settings)

	// other users still see defaults
	other := s.newClient()
	s.signupAndLogin(other, "bob")
	rec = other.do(http.MethodGet, "/api/v1/settings/alerts", nil)
	s.Equal(defaults.Resolve(defaults.PageAlerts), decode[dto.SettingsResponse](s, rec).Settings)
}

func (s *HandlersTestSuite) TestSaveRejectsInvalidSettings() {
	cl := s.newClient()
	s.signupAndLogin(cl, "alice")

	bad := defaults.Resolve(defaults.PageAlerts)
	bad.StartCol = "1A"
	rec := cl.do(http.MethodPut, "/api/v1/settings/alerts", bad)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = cl.do(http.MethodPut, "/api/v1/settings/alerts", "not an object")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestLoginFailures() {
	cl := s.newClient()
	rec := cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = cl.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "alice", Password: "wrong-password"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Invalid username or password", decode[handlers.ErrorResponse](s, rec).Error)

	rec = cl.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "nobody", Password: "correct-horse"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Invalid username or password", decode[handlers.ErrorResponse](s, rec).Error)

	rec = cl.do(http.MethodGet, "/api/v1/auth/session", nil)
	s.Equal(session.StateLogin, decode[dto.SessionResponse](s, rec).State, "failed logins do not change state")
}

func (s *HandlersTestSuite) TestSignupErrors() {
	cl := s.newClient()
	rec := cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse", ConfirmPassword: "different",
	})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "short", ConfirmPassword: "short",
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	s.signupAndLogin(cl, "alice")
	rec = s.newClient().do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "other@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Equal(http.StatusConflict, rec.Code)

	// already logged in
	rec = cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "carol", Email: "carol@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlersTestSuite) TestLogoutDestroysSession() {
	cl := s.newClient()
	login := s.signupAndLogin(cl, "alice")
	bearer := "Bearer " + login.Token

	rec := cl.do(http.MethodPost, "/api/v1/auth/logout", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := decode[dto.MessageResponse](s, rec)
	s.Equal(session.StateLogin, resp.Session.State)
	s.False(resp.Session.Authenticated)

	rec = s.newClient().do(http.MethodGet, "/api/v1/auth/session", nil, "Authorization", bearer)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = cl.do(http.MethodPut, "/api/v1/settings/alerts", defaults.Resolve(defaults.PageAlerts))
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlersTestSuite) TestBearerLogout() {
	cl := s.newClient()
	login := s.signupAndLogin(cl, "alice")
	bearer := "Bearer " + login.Token

	api := s.newClient()
	rec := api.do(http.MethodPost, "/api/v1/auth/logout", nil, "Authorization", bearer)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/settings", nil, "Authorization", bearer)
	s.Equal(http.StatusUnauthorized, rec.Code)

	// the browser shared that session, so it is logged out too
	rec = cl.do(http.MethodGet, "/api/v1/auth/session", nil)
	s.False(decode[dto.SessionResponse](s, rec).Authenticated)
}

func (s *HandlersTestSuite) TestMalformedBearer() {
	rec := s.newClient().do(http.MethodGet, "/api/v1/pages", nil, "Authorization", "Token abc")
	s.Equal(http.StatusUnauthorized, rec.Code)
	rec = s.newClient().do(http.MethodGet, "/api/v1/pages", nil, "Authorization", "Bearer not-a-jwt")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersTestSuite) TestSwitchView() {
	cl := s.newClient()
	rec := cl.do(http.MethodPost, "/api/v1/auth/view", dto.ViewRequest{View: "signup"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(session.StateSignup, decode[dto.SessionResponse](s, rec).State)

	rec = cl.do(http.MethodPost, "/api/v1/auth/password-reset/request", dto.PasswordResetRequest{Email: "a@example.com"})
	s.Equal(http.StatusConflict, rec.Code, "reset is requested from the login form")

	rec = cl.do(http.MethodPost, "/api/v1/auth/view", dto.ViewRequest{View: "login"})
	s.Equal(session.StateLogin, decode[dto.SessionResponse](s, rec).State)

	rec = cl.do(http.MethodPost, "/api/v1/auth/view", dto.ViewRequest{View: "elsewhere"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestPasswordResetFlow() {
	cl := s.newClient()
	rec := cl.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = cl.do(http.MethodPost, "/api/v1/auth/password-reset/request", dto.PasswordResetRequest{Email: "alice@example.com"})
	s.Require().Equal(http.StatusAccepted, rec.Code)
	known := decode[dto.MessageResponse](s, rec)
	s.Equal(session.StateResetRequested, known.Session.State)
	token := s.notifier.token("alice@example.com")
	s.Require().NotEmpty(token)

	rec = cl.do(http.MethodPost, "/api/v1/auth/password-reset/verify", dto.PasswordResetVerifyRequest{Token: token})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(session.StateResetInProgress, decode[dto.SessionResponse](s, rec).State)

	rec = cl.do(http.MethodPost, "/api/v1/auth/password-reset/confirm", dto.PasswordResetConfirmRequest{
		Token: token, NewPassword: "brand-new-secret", ConfirmPassword: "brand-new-secret",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(session.StateLogin, decode[dto.MessageResponse](s, rec).Session.State)

	rec = cl.do(http.MethodPost, "/api/v1/auth/password-reset/confirm", dto.PasswordResetConfirmRequest{
		Token: token, NewPassword: "third-secret-here", ConfirmPassword: "third-secret-here",
	})
	s.Equal(http.StatusUnauthorized, rec.Code, "tokens are single use")

	rec = cl.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "alice", Password: "brand-new-secret"})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlersTestSuite) TestPasswordResetDoesNotRevealEmails() {
	known := s.newClient()
	rec := known.do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	a := known.do(http.MethodPost, "/api/v1/auth/password-reset/request", dto.PasswordResetRequest{Email: "alice@example.com"})
	b := s.newClient().do(http.MethodPost, "/api/v1/auth/password-reset/request", dto.PasswordResetRequest{Email: "ghost@example.com"})
	s.Equal(a.Code, b.Code)
	s.Equal(decode[dto.MessageResponse](s, a).Message, decode[dto.MessageResponse](s, b).Message)
	s.Empty(s.notifier.token("ghost@example.com"))
}

func (s *HandlersTestSuite) TestVerifyRejectsUnknownToken() {
	rec := s.newClient().do(http.MethodPost, "/api/v1/auth/password-reset/verify", dto.PasswordResetVerifyRequest{Token: "made-up"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersTestSuite) TestPages() {
	cl := s.newClient()
	rec := cl.do(http.MethodGet, "/api/v1/pages", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(decode[dto.ListPagesResponse](s, rec).Pages, 4)

	rec = cl.do(http.MethodGet, "/api/v1/pages/alerts", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	view := decode[viewResponse](s, rec)
	s.Equal(defaults.PageAlerts, view.PageID)
	s.True(view.ReadOnly)
	s.Equal(30, view.Info.TotalRows)
	s.True(view.Info.Source.Sample)

	rec = cl.do(http.MethodGet, "/api/v1/auth/session", nil)
	s.Equal(defaults.PageAlerts, decode[dto.SessionResponse](s, rec).CurrentPage)

	rec = cl.do(http.MethodGet, "/api/v1/pages/nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersTestSuite) TestPreview() {
	cl := s.newClient()
	preview := defaults.Resolve(defaults.PageSignals)
	preview.MaxRows = 4
	rec := cl.do(http.MethodPost, "/api/v1/pages/signals", preview)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(4, decode[viewResponse](s, rec).Info.DisplayedRows)

	preview.EndRow = 0
	rec = cl.do(http.MethodPost, "/api/v1/pages/signals", preview)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlersTestSuite) TestPartialSaveMergesOverDefaults() {
	cl := s.newClient()
	s.signupAndLogin(cl, "alice")

	rec := cl.do(http.MethodPut, "/api/v1/settings/alerts", map[string]any{"sort_by": "Sales"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	want := defaults.Resolve(defaults.PageAlerts)
	want.SortBy = "Sales"
	s.Equal(want, decode[dto.SettingsResponse](s, rec).Settings)

	rec = cl.do(http.MethodGet, "/api/v1/settings/alerts", nil)
	s.Equal(want, decode[dto.SettingsResponse](s, rec).Settings)
}

func (s *HandlersTestSuite) TestPartialPreview() {
	rec := s.newClient().do(http.MethodPost, "/api/v1/pages/alerts", map[string]any{"max_rows": 5})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	view := decode[viewResponse](s, rec)
	s.Equal(5, view.Info.DisplayedRows)
	s.Equal(defaults.Resolve(defaults.PageAlerts).SheetName, view.Settings.SheetName)

	// a logged-in preview starts from the saved record
	cl := s.newClient()
	s.signupAndLogin(cl, "alice")
	rec = cl.do(http.MethodPut, "/api/v1/settings/alerts", map[string]any{"sort_by": "Sales", "sort_ascending": false})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = cl.do(http.MethodPost, "/api/v1/pages/alerts", map[string]any{"max_rows": 3})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	view = decode[viewResponse](s, rec)
	s.Equal(3, view.Info.DisplayedRows)
	s.Equal("Sales", view.Settings.SortBy)
	s.False(view.Settings.SortAscending)

	rec = cl.do(http.MethodGet, "/api/v1/settings/alerts", nil)
	s.Equal(0, decode[dto.SettingsResponse](s, rec).Settings.MaxRows, "previews are not saved")

	rec = cl.do(http.MethodPost, "/api/v1/pages/nope", map[string]any{"max_rows": 3})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersTestSuite) TestRefresh() {
	rec := s.newClient().do(http.MethodPost, "/api/v1/data/refresh", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotEmpty(decode[dto.RefreshResponse](s, rec).Message)
}

func (s *HandlersTestSuite) TestLoginIsRateLimited() {
	cfg := testConfig()
	cfg.LoginRateLimit = "2-M"
	s.router = newRouter(cfg, s.notifier)
	cl := s.newClient()

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := cl.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "alice", Password: "whatever-pass"})
		codes = append(codes, rec.Code)
	}
	s.Equal([]int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func (s *HandlersTestSuite) TestSignupSharesLoginRateLimit() {
	cfg := testConfig()
	cfg.LoginRateLimit = "2-M"
	s.router = newRouter(cfg, s.notifier)

	codes := []int{}
	for _, name := range []string{"alice", "bob", "carol"} {
		rec := s.newClient().do(http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{
			Username: name, Email: "shared@example.com", Password: "correct-horse", ConfirmPassword: "correct-horse",
		})
		codes = append(codes, rec.Code)
	}
	s.Equal([]int{http.StatusCreated, http.StatusConflict, http.StatusTooManyRequests}, codes)
}
