package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/models"
)

type BatchHandler struct{}

func NewBatchHandler() *BatchHandler { return &BatchHandler{} }

var reBatchCode = regexp.MustCompile(`^[A-Za-z0-9\-]{2,20}$`)

/* -------------------- Payload structs -------------------- */

type batchPayload struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ProgrammeType string `json:"programme_type"`
	Discipline    string `json:"discipline"`
	AcademicYear  int    `json:"academic_year"`
	TotalSeats    int    `json:"total_seats"`
}

func (p *batchPayload) normalize() {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.Join(strings.Fields(p.Name), " ")
	p.ProgrammeType = strings.ToLower(strings.TrimSpace(p.ProgrammeType))
	p.Discipline = engine.CleanQualifiedName(p.Discipline)
}

func validateBatch(p *batchPayload) map[string]string {
	errs := map[string]string{}
	if !reBatchCode.MatchString(p.Code) {
		errs["code"] = "code must be 2-20 letters, digits or dashes"
	}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if _, ok := engine.ParseProgramme(p.ProgrammeType); !ok {
		errs["programme_type"] = "must be ug, pg or phd"
	}
	if p.Discipline == "" {
		errs["discipline"] = "discipline is required"
	}
	if p.AcademicYear < 2000 || p.AcademicYear > 2100 {
		errs["academic_year"] = "academic year out of range"
	}
	if p.TotalSeats < 1 {
		errs["total_seats"] = "total seats must be positive"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

/* -------------------- Handlers -------------------- */

// GET /batches?programme=&year= — the snapshot the intake flow matches
// against. Available seats are derived on the way out.
func (h *BatchHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Batch{})
	if s := strings.TrimSpace(c.QueryParam("programme")); s != "" {
		if p, ok := engine.ParseProgramme(s); ok {
			tx = tx.Where("programme_type = ?", string(p))
		}
	}
	if y := atoiOr(c.QueryParam("year"), 0); y > 0 {
		tx = tx.Where("academic_year = ?", y)
	}

	var items []models.Batch
	if err := tx.Order("code ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	out := make([]map[string]any, 0, len(items))
	for _, b := range items {
		out = append(out, map[string]any{
			"id":              b.ID,
			"code":            b.Code,
			"name":            b.Name,
			"programme_type":  b.ProgrammeType,
			"discipline":      b.Discipline,
			"academic_year":   b.AcademicYear,
			"total_seats":     b.TotalSeats,
			"filled_seats":    b.FilledSeats,
			"available_seats": b.AvailableSeats(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BatchHandler) Get(c echo.Context) error {
	var b models.Batch
	if err := database.DB.First(&b, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BatchHandler) Create(c echo.Context) error {
	var p batchPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateBatch(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	b := models.Batch{
		Code: p.Code, Name: p.Name, ProgrammeType: p.ProgrammeType,
		Discipline: p.Discipline, AcademicYear: p.AcademicYear, TotalSeats: p.TotalSeats,
	}
	if err := database.DB.Create(&b).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /batches/:id — seats can grow freely but never shrink below the
// seats already filled.
func (h *BatchHandler) Update(c echo.Context) error {
	var b models.Batch
	if err := database.DB.First(&b, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var p batchPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateBatch(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}
	if p.TotalSeats < b.FilledSeats {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"error":  "SEATS_BELOW_FILLED",
			"fields": map[string]string{"total_seats": "cannot shrink below filled seats"},
		})
	}

	b.Code = p.Code
	b.Name = p.Name
	b.ProgrammeType = p.ProgrammeType
	b.Discipline = p.Discipline
	b.AcademicYear = p.AcademicYear
	b.TotalSeats = p.TotalSeats
	if err := database.DB.Save(&b).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /batches/:id — only empty batches can go.
func (h *BatchHandler) Delete(c echo.Context) error {
	var b models.Batch
	if err := database.DB.First(&b, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if b.FilledSeats > 0 {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "BATCH_NOT_EMPTY"})
	}
	if err := database.DB.Delete(&b).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	return c.NoContent(http.StatusNoContent)
}
