package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/sheet_dashboard/internal/core/ports/services"
	"github.com/SscSPs/sheet_dashboard/internal/core/session"
	"github.com/SscSPs/sheet_dashboard/internal/dto"
	"github.com/SscSPs/sheet_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// resetRequestedMessage is returned whether or not the email is registered.
const resetRequestedMessage = "If the email is registered, a password reset link has been sent."

// authHandler drives the login flow. Every action checks that its event is
// allowed before calling the service and fires it only after success.
type authHandler struct {
	auth     portssvc.AuthSvcFacade
	tokens   portssvc.TokenSvcFacade
	notifier portssvc.ResetNotifier
	sessions *middleware.SessionManager
}

func newAuthHandler(services *portssvc.ServiceContainer, sessions *middleware.SessionManager) *authHandler {
	return &authHandler{
		auth:     services.Auth,
		tokens:   services.Token,
		notifier: services.Notifier,
		sessions: sessions,
	}
}

// registerAuthRoutes sets up the routes for authentication.
func registerAuthRoutes(rg *gin.RouterGroup, h *authHandler, limit *limiter.Limiter) {
	limited := middleware.RateLimit(limit)

	auth := rg.Group("/auth")
	{
		auth.POST("/signup", limited, h.signup)
		auth.POST("/login", limited, h.login)
		auth.POST("/logout", h.logout)
		auth.POST("/view", h.switchView)
		auth.GET("/session", h.getSession)

		reset := auth.Group("/password-reset")
		reset.POST("/request", limited, h.requestReset)
		reset.POST("/verify", h.verifyReset)
		reset.POST("/confirm", h.confirmReset)
	}
}

// currentSession returns the request's session, answering 500 when the session
// middleware did not run.
func currentSession(c *gin.Context) (*session.Context, bool) {
	sess, ok := middleware.GetSessionFromContext(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Session missing from context")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Session unavailable"})
		return nil, false
	}
	return sess, true
}

// signup godoc
// @Summary Register new user
// @Description Creates a new account and returns the flow to the login form.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "User Registration Info"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email exists, or signup not allowed in the current state"
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/signup [post]
func (h *authHandler) signup(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.Password != req.ConfirmPassword {
		badRequest(c, "Passwords do not match", nil)
		return
	}
	if err := sess.Can(session.EventSubmitSignup); err != nil {
		respondError(c, err, "Signup not allowed")
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}
	_ = sess.Fire(session.EventSubmitSignup)

	middleware.GetLoggerFromContext(c).Info("User registered", slog.String("new_user_id", user.UserID))
	c.JSON(http.StatusCreated, dto.MessageResponse{
		Message: "Account created successfully! Please login.",
		Session: dto.ToSessionResponse(sess),
	})
}

// login godoc
// @Summary User login
// @Description Authenticates a user, binds the session and returns a JWT carrying the session id.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already logged in"
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if err := sess.Can(session.EventSubmitLogin); err != nil {
		respondError(c, err, "Login not allowed")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	sess, err = h.sessions.Rotate(c)
	if err != nil {
		respondError(c, err, "Failed to start session")
		return
	}
	token, expiresAt, err := h.tokens.GenerateAccessToken(c.Request.Context(), user, sess.ID)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}
	if err := sess.Login(user.UserID, user.Username); err != nil {
		respondError(c, err, "Login failed")
		return
	}
	h.sessions.Bind(c, sess)

	middleware.GetLoggerFromContext(c).Info("User logged in")
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
		Session:   dto.ToSessionResponse(sess),
	})
}

// logout godoc
// @Summary Logout
// @Description Destroys the session. Tokens issued for it stop working.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	h.sessions.Destroy(c)
	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Logged out",
		Session: dto.ToSessionResponse(sess),
	})
}

// switchView godoc
// @Summary Switch login form
// @Description Moves the flow to the login or signup form.
// @Tags auth
// @Accept json
// @Produce json
// @Param view body dto.ViewRequest true "Target form"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/view [post]
func (h *authHandler) switchView(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	ev := session.EventShowLogin
	if req.View == "signup" {
		ev = session.EventShowSignup
	}
	if err := sess.Fire(ev); err != nil {
		respondError(c, err, "View change not allowed")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

// getSession godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Router /auth/session [get]
func (h *authHandler) getSession(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

// requestReset godoc
// @Summary Request password reset
// @Description Sends a reset link if the email is registered. The response does not reveal whether it is.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Account email"
// @Success 202 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/password-reset/request [post]
func (h *authHandler) requestReset(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if err := sess.Can(session.EventRequestReset); err != nil {
		respondError(c, err, "Password reset not allowed")
		return
	}

	ctx := c.Request.Context()
	token, issued, err := h.auth.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		respondError(c, err, "Failed to request password reset")
		return
	}
	if issued {
		if err := h.notifier.NotifyPasswordReset(ctx, req.Email, token); err != nil {
			middleware.GetLoggerFromContext(c).Error("Failed to deliver reset link", slog.String("error", err.Error()))
		}
	}
	_ = sess.Fire(session.EventRequestReset)

	c.JSON(http.StatusAccepted, dto.MessageResponse{
		Message: resetRequestedMessage,
		Session: dto.ToSessionResponse(sess),
	})
}

// verifyReset godoc
// @Summary Verify reset token
// @Description Checks a token from a reset link and opens the new-password form.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetVerifyRequest true "Reset token"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 409 {object} ErrorResponse
// @Router /auth/password-reset/verify [post]
func (h *authHandler) verifyReset(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.PasswordResetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if err := sess.Can(session.EventBeginReset); err != nil {
		respondError(c, err, "Password reset not allowed")
		return
	}
	if err := h.auth.VerifyResetToken(c.Request.Context(), req.Token); err != nil {
		respondError(c, err, "Failed to verify reset token")
		return
	}
	_ = sess.Fire(session.EventBeginReset)
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

// confirmReset godoc
// @Summary Set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (h *authHandler) confirmReset(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		badRequest(c, "Passwords do not match", nil)
		return
	}
	if err := sess.Can(session.EventSubmitNewPassword); err != nil {
		respondError(c, err, "Password reset not allowed")
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}
	_ = sess.Fire(session.EventSubmitNewPassword)

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Password updated. Please login with your new password.",
		Session: dto.ToSessionResponse(sess),
	})
}
