package handlers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/models"
)

// -----------------------------
// Handler & ctor
// -----------------------------

type StaffAccountHandler struct{}

func NewStaffAccountHandler() *StaffAccountHandler { return &StaffAccountHandler{} }

// -----------------------------
// Request/Response payloads
// -----------------------------

type createStaffAccountReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type resetPasswordReq struct {
	Length int `json:"length"`
}

type staffAccountDTO struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}

// -----------------------------
// Helpers
// -----------------------------

func toStaffDTO(u models.User) staffAccountDTO {
	return staffAccountDTO{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		UpdatedAt: u.UpdatedAt,
	}
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func randomPassword(n int) string {
	// Skips look-alike characters (I, l, O, 0).
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz123456789"
	if n < 8 {
		n = 8
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			out[i] = alphabet[i%len(alphabet)]
			continue
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// -----------------------------
// List accounts
// GET /admin/staff-accounts
// -----------------------------

func (h *StaffAccountHandler) List(c echo.Context) error {
	var users []models.User
	q := database.DB.Where("role = ?", "staff")
	if err := q.Order("updated_at desc").Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	out := make([]staffAccountDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toStaffDTO(u))
	}
	return c.JSON(http.StatusOK, out)
}

// -----------------------------
// Create account
// POST /admin/staff-accounts
// body: { username, password, name }
// -----------------------------

func (h *StaffAccountHandler) Create(c echo.Context) error {
	var req createStaffAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if req.Username == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error": "VALIDATION_ERROR",
			"fields": map[string]string{
				"username": "required",
				"password": "min_length_8",
			},
		})
	}

	var cnt int64
	if err := database.DB.Model(&models.User{}).
		Where("username = ?", req.Username).Count(&cnt).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if cnt > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_TAKEN"})
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_ERROR"})
	}

	u := models.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         "staff",
		Name:         req.Name,
	}
	if err := database.DB.Create(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_SAVE_ERROR"})
	}

	return c.JSON(http.StatusCreated, toStaffDTO(u))
}

// -----------------------------
// Reset password (one-time)
// POST /admin/staff-accounts/:id/reset
// body: { length }
// resp: { one_time_password }
// -----------------------------

func (h *StaffAccountHandler) ResetPassword(c echo.Context) error {
	idStr := c.Param("id")
	id64, _ := strconv.ParseUint(idStr, 10, 64)
	if id64 == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		req.Length = 12
	}
	if req.Length < 8 {
		req.Length = 8
	}

	var u models.User
	if err := database.DB.First(&u, uint(id64)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "ACCOUNT_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if u.Role != "staff" {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "NOT_STAFF_ACCOUNT"})
	}

	newPW := randomPassword(req.Length)
	hash, err := hashPassword(newPW)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_ERROR"})
	}
	u.PasswordHash = hash

	if err := database.DB.Save(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_SAVE_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"one_time_password": newPW})
}

// -----------------------------
// Delete account
// DELETE /admin/staff-accounts/:id
// -----------------------------

func (h *StaffAccountHandler) Delete(c echo.Context) error {
	idStr := c.Param("id")
	id64, _ := strconv.ParseUint(idStr, 10, 64)
	if id64 == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}

	var u models.User
	if err := database.DB.First(&u, uint(id64)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "ACCOUNT_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if u.Role != "staff" {
		return c.JSON(http.StatusForbidden, map[string]any{"error": "NOT_STAFF_ACCOUNT"})
	}

	if err := database.DB.Delete(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_DELETE_ERROR"})
	}
	return c.NoContent(http.StatusNoContent)
}
