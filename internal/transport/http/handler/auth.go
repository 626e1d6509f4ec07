package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/session"
	"github.com/ErlanBelekov/companydesk/internal/validation"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email string) (*domain.Credentials, error)
	Authenticate(ctx context.Context, bearer, shadow string) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	validator   fieldValidator
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, validator fieldValidator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		logger:      logger.With("component", "auth_handler"),
	}
}

// POST /auth/login
// An unknown email is not an error: it answers authenticated=false.
func (h *AuthHandler) Login(c *gin.Context) {
	fields, err := h.validator.Validate(bodyFields(c), validation.FieldEmail)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	creds, err := h.authUsecase.Login(c.Request.Context(), fields[validation.FieldEmail])
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errServiceUnavailable})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	setSessionCookies(c.Writer, creds)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// POST /auth/check
func (h *AuthHandler) Check(c *gin.Context) {
	bearer, _ := c.Cookie(session.BearerCookie)
	shadow, _ := c.Cookie(session.ShadowCookie)
	if bearer == "" || shadow == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	email, err := h.authUsecase.Authenticate(c.Request.Context(), bearer, shadow)
	if err != nil {
		if domain.IsRejection(err) {
			h.logger.DebugContext(c.Request.Context(), "session rejected", "reason", err)
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "session check", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errServiceUnavailable})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "email": email})
}

// POST /auth/logout
// Every cookie the client sent is overwritten, not only the session pair.
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, ck := range c.Request.Cookies() {
		clearCookie(c.Writer, ck.Name)
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}
