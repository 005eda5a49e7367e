package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-server/auth"
	"inventory-server/middleware"
	"inventory-server/models"
	"inventory-server/store"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(u models.User) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type AuthController struct {
	Store    store.Source
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Notifier auth.Notifier
	ResetTTL time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthController) respondWithToken(c *gin.Context, status int, u models.User) {
	token, exp, err := h.Tokens.Issue(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"token": token, "expires_at": exp, "user": u})
}

// Register handles POST /api/auth/register. The first account created
// becomes an admin.
func (h *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		respondError(c, err)
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ts := now(h.Now)
	u := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := st.RegisterUser(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, u)
}

// Login handles POST /api/auth/login. Unknown email and wrong password get
// the same answer.
func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	u, err := st.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, err)
		return
	}
	if err != nil || h.Hasher.Compare(u.PasswordHash, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	h.respondWithToken(c, http.StatusOK, u)
}

// Me handles GET /api/auth/me.
func (h *AuthController) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	u, err := st.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// the same whether or not the email is registered.
func (h *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	accepted := gin.H{"message": "If that email is registered, a reset link has been sent"}

	u, err := st.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, accepted)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	raw, hash, err := auth.NewResetToken()
	if err != nil {
		respondError(c, err)
		return
	}
	ttl := h.ResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	reset := models.PasswordReset{TokenHash: hash, UserID: u.ID, ExpiresAt: now(h.Now).Add(ttl)}
	if err := st.CreatePasswordReset(ctx, reset); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Notifier.SendPasswordReset(ctx, u, raw); err != nil && h.Logger != nil {
		h.Logger.ErrorContext(ctx, "send password reset", "user_id", u.ID, "err", err)
	}
	c.JSON(http.StatusOK, accepted)
}

// PasswordResetController serves POST /api/auth/reset-password. It is
// registered ahead of the auth group and owns that path.
type PasswordResetController struct {
	Store  store.Source
	Hasher PasswordHasher
	Now    func() time.Time
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *PasswordResetController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		respondError(c, err)
		return
	}
	st, ok := openStore(c, h.Store)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	userID, err := st.ConsumePasswordReset(ctx, auth.HashResetToken(strings.TrimSpace(req.Token)), now(h.Now))
	if errors.Is(err, store.ErrNotFound) {
		badRequest(c, "invalid or expired reset token")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := st.UpdatePassword(ctx, userID, hash); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
