package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/oauth"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (string, error)
}

type IdentityLinker interface {
	Link(ctx context.Context, externalID, email string, emailVerified bool) (*model.User, error)
}

type AuthHandler struct {
	users       UserStore
	tokens      TokenIssuer
	linker      IdentityLinker
	provider    oauth.Provider
	states      oauth.StateStore
	frontendURL string
	log         logrus.FieldLogger
}

type AuthHandlerConfig struct {
	Users       UserStore
	Tokens      TokenIssuer
	Linker      IdentityLinker
	Provider    oauth.Provider
	States      oauth.StateStore
	FrontendURL string
	Log         logrus.FieldLogger
}

func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		users:       cfg.Users,
		tokens:      cfg.Tokens,
		linker:      cfg.Linker,
		provider:    cfg.Provider,
		states:      cfg.States,
		frontendURL: cfg.FrontendURL,
		log:         cfg.Log,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	HasPassword *bool     `json:"hasPassword,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Signup godoc
// @Summary      Register with email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignupRequest  true  "Credentials"
// @Success      201   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	email := auth.NormalizeEmail(req.Email)
	ctx := c.Request.Context()

	existing, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		respondError(c, h.log, err, "Failed to check email")
		return
	}
	if existing != nil {
		abortWithError(c, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.log, err, "Failed to hash password")
		return
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			abortWithError(c, http.StatusBadRequest, "Email already registered")
			return
		}
		respondError(c, h.log, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// Login godoc
// @Summary      Exchange email and password for a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  TokenResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), auth.NormalizeEmail(req.Email))
	if err != nil {
		respondError(c, h.log, err, "Failed to look up user")
		return
	}
	// OAuth-only accounts have no hash and never match.
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		abortWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.issueToken(c, user)
}

func (h *AuthHandler) issueToken(c *gin.Context, user *model.User) {
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondError(c, h.log, err, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// GoogleLogin godoc
// @Summary      Start the Google sign-in handshake
// @Tags         Auth
// @Success      302
// @Router       /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := h.states.Issue(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to issue oauth state")
		h.redirectToFrontend(c, "error", "oauth_unavailable")
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback godoc
// @Summary      Finish the Google sign-in handshake
// @Description  Redirects to the frontend with ?token= on success or ?error= on failure.
// @Tags         Auth
// @Param        state  query  string  true  "Handshake state"
// @Param        code   query  string  true  "Authorization code"
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	if providerErr := c.Query("error"); providerErr != "" {
		h.redirectToFrontend(c, "error", providerErr)
		return
	}

	valid, err := h.states.Consume(ctx, c.Query("state"))
	if err != nil {
		h.log.WithError(err).Error("failed to consume oauth state")
		h.redirectToFrontend(c, "error", "oauth_unavailable")
		return
	}
	if !valid {
		h.redirectToFrontend(c, "error", "invalid_state")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.redirectToFrontend(c, "error", "missing_code")
		return
	}

	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.log.WithError(err).Warn("google code exchange failed")
		h.redirectToFrontend(c, "error", "authentication_failed")
		return
	}

	user, err := h.linker.Link(ctx, profile.ExternalID, profile.Email, profile.EmailVerified)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingEmail):
			h.redirectToFrontend(c, "error", "missing_email")
			return
		case errors.Is(err, auth.ErrUnverifiedEmail):
			h.redirectToFrontend(c, "error", "unverified_email")
			return
		}
		h.log.WithError(err).Error("failed to link google identity")
		h.redirectToFrontend(c, "error", "authentication_failed")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.log.WithError(err).Error("failed to issue token")
		h.redirectToFrontend(c, "error", "authentication_failed")
		return
	}

	h.redirectToFrontend(c, "token", token)
}

func (h *AuthHandler) redirectToFrontend(c *gin.Context, key, value string) {
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		respondError(c, h.log, err, "Invalid frontend URL")
		return
	}
	q := target.Query()
	q.Set(key, value)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// Me godoc
// @Summary      Current account
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve user")
		return
	}

	hasPassword := user.HasPassword()
	c.JSON(http.StatusOK, UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		HasPassword: &hasPassword,
		CreatedAt:   user.CreatedAt,
	})
}

// DeleteMe godoc
// @Summary      Delete the current account with all boards and tasks
// @Tags         Auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/me [delete]
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
