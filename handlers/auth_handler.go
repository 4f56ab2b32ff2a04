package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/models"
)

/* ====================== Config & Helpers ====================== */

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler() *AuthHandler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret" // set a real one outside dev
	}
	return &AuthHandler{JWTSecret: secret}
}

func (h *AuthHandler) signJWT(sub uint, role, name string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

/* ====================== DTOs ====================== */

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

/* ====================== Handlers ====================== */

// POST /auth/login — admin and staff accounts share the users table.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var u models.User
	if err := database.DB.Where("username = ?", username).First(&u).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	token, err := h.signJWT(u.ID, u.Role, u.Name, 7*24*time.Hour)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "TOKEN_GEN_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]any{"id": u.ID, "role": u.Role, "username": u.Username, "name": u.Name},
	})
}

// PUT /admin/profile/password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, _ := c.Get("user_id").(uint)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "UNAUTHORIZED"})
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if len(req.NewPassword) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"new_password": "must be at least 8 characters"},
		})
	}

	var u models.User
	if err := database.DB.First(&u, "id = ?", userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "UNAUTHORIZED"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_CREDENTIALS"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	u.PasswordHash = string(hashed)
	if err := database.DB.Save(&u).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "DB_UPDATE_FAILED"})
	}
	return c.NoContent(http.StatusNoContent)
}
