package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filmatlas/filmatlas/internal/sessions"
	"github.com/filmatlas/filmatlas/internal/tokens"
	"github.com/filmatlas/filmatlas/internal/users"
	"github.com/filmatlas/filmatlas/pkg/logger"
	"github.com/filmatlas/filmatlas/pkg/middleware"
)

// AuthHandler serves registration, login, token refresh, logout and the
// user profile endpoints.
type AuthHandler struct {
	users    *users.Service
	sessions *sessions.Service
}

func NewAuthHandler(u *users.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{users: u, sessions: s}
}

func errorBody(message string) gin.H {
	return gin.H{"error": true, "message": message}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// login-only lifetime overrides
	LongExpiry              bool  `json:"longExpiry"`
	BearerExpiresInSeconds  int64 `json:"bearerExpiresInSeconds"`
	RefreshExpiresInSeconds int64 `json:"refreshExpiresInSeconds"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`

	// optional lifetime overrides for the minted pair
	BearerExpiresInSeconds  int64 `json:"bearerExpiresInSeconds"`
	RefreshExpiresInSeconds int64 `json:"refreshExpiresInSeconds"`
}

// Register handles POST /user/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, errorBody("Request body incomplete, both email and password are required"))
		return
	}

	_, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var verr *users.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, errorBody(verr.Message))
		case errors.Is(err, users.ErrEmailTaken):
			c.JSON(http.StatusConflict, errorBody("User already exists"))
		default:
			logger.Errorf("register: %v", err)
			c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created"})
}

func tokenPairBody(pair *sessions.TokenPair) gin.H {
	return gin.H{
		"bearerToken": gin.H{
			"token":      pair.BearerToken,
			"token_type": "Bearer",
			"expires_in": pair.BearerExpiresIn,
		},
		"refreshToken": gin.H{
			"token":      pair.RefreshToken,
			"token_type": "Refresh",
			"expires_in": pair.RefreshExpiresIn,
		},
	}
}

// Login handles POST /user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, errorBody("Request body incomplete, both email and password are required"))
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorBody("Incorrect email or password"))
			return
		}
		logger.Errorf("login: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	opts := sessions.TTLOptions{
		LongExpiry: req.LongExpiry,
		BearerTTL:  time.Duration(req.BearerExpiresInSeconds) * time.Second,
		RefreshTTL: time.Duration(req.RefreshExpiresInSeconds) * time.Second,
	}
	pair, err := h.sessions.IssuePair(c.Request.Context(), u.ID, u.Email, opts)
	if err != nil {
		logger.Errorf("issue token pair: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, tokenPairBody(pair))
}

// Refresh handles POST /user/refresh. Rotation is atomic in the store,
// so a replayed token gets a 401 regardless of timing.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, errorBody("Request body incomplete, refresh token required"))
		return
	}

	opts := sessions.TTLOptions{
		BearerTTL:  time.Duration(req.BearerExpiresInSeconds) * time.Second,
		RefreshTTL: time.Duration(req.RefreshExpiresInSeconds) * time.Second,
	}
	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken, opts)
	if err != nil {
		h.refreshFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairBody(pair))
}

// Logout handles POST /user/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, errorBody("Request body incomplete, refresh token required"))
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		h.refreshFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Token successfully invalidated"})
}

// refreshFailure maps refresh/logout errors onto the 401 taxonomy. An
// unknown-but-well-signed token gets the same response as a bad one.
func (h *AuthHandler) refreshFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tokens.ErrTokenExpired), errors.Is(err, sessions.ErrExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   true,
			"message": "JWT token has expired",
			"expired": true,
		})
	case errors.Is(err, tokens.ErrTokenInvalid), errors.Is(err, sessions.ErrNotFound):
		c.JSON(http.StatusUnauthorized, errorBody("Invalid JWT token"))
	default:
		logger.Errorf("refresh session: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
	}
}

// GetProfile handles GET /user/:email/profile. Authentication is
// optional; the owner sees dob and address.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	viewerID := ""
	if p, ok := middleware.Principal(c); ok {
		viewerID = p.UserID
	}

	view, err := h.users.Profile(c.Request.Context(), c.Param("email"), viewerID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("User not found"))
			return
		}
		logger.Errorf("get profile: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateProfile handles PUT /user/:email/profile (owner only).
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("Authorization header ('Bearer token') not found"))
		return
	}

	var in users.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Request body invalid: firstName, lastName and address must be strings only."))
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), c.Param("email"), p.UserID, in)
	if err != nil {
		var verr *users.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, errorBody(verr.Message))
		case errors.Is(err, users.ErrForbidden):
			c.JSON(http.StatusForbidden, errorBody("Forbidden"))
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody("User not found"))
		default:
			logger.Errorf("update profile: %v", err)
			c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		}
		return
	}

	dob := ""
	if u.DOB != nil {
		dob = u.DOB.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"dob":       dob,
		"address":   u.Address,
	})
}
