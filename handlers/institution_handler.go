package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/models"
)

// InstitutionHandler manages the single row of deployment settings the
// intake flow reads (default academic year, roll-number length).
type InstitutionHandler struct{}

func NewInstitutionHandler() *InstitutionHandler { return &InstitutionHandler{} }

type institutionPayload struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Address             string `json:"address"`
	Phone               string `json:"phone"`
	CurrentAcademicYear int    `json:"current_academic_year"`
	RollNoDigits        int    `json:"roll_no_digits"`
}

var (
	reInstCode  = regexp.MustCompile(`^[A-Za-z0-9\-]{1,20}$`)
	reInstPhone = regexp.MustCompile(`^[0-9\- +]{0,20}$`)
)

func validateInstitution(p institutionPayload) map[string]string {
	errs := map[string]string{}
	if !reInstCode.MatchString(strings.TrimSpace(p.Code)) {
		errs["code"] = "code must be letters, digits or dashes"
	}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	if !reInstPhone.MatchString(strings.TrimSpace(p.Phone)) {
		errs["phone"] = "invalid phone format"
	}
	if p.CurrentAcademicYear != 0 && (p.CurrentAcademicYear < 2000 || p.CurrentAcademicYear > 2100) {
		errs["current_academic_year"] = "academic year out of range"
	}
	if p.RollNoDigits < 0 || p.RollNoDigits > 30 {
		errs["roll_no_digits"] = "must be between 0 and 30"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// GET /admin/institution
func (h *InstitutionHandler) Get(c echo.Context) error {
	var inst models.Institution
	if err := database.DB.First(&inst).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, inst)
}

// POST /admin/institution — create on first call, update afterwards.
func (h *InstitutionHandler) CreateOrUpdate(c echo.Context) error {
	var p institutionPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if errs := validateInstitution(p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var inst models.Institution
	err := database.DB.First(&inst).Error
	created := err != nil

	inst.Code = strings.TrimSpace(p.Code)
	inst.Name = strings.Join(strings.Fields(p.Name), " ")
	inst.Address = strings.TrimSpace(p.Address)
	inst.Phone = strings.TrimSpace(p.Phone)
	inst.CurrentAcademicYear = p.CurrentAcademicYear
	inst.RollNoDigits = p.RollNoDigits

	if err := database.DB.Save(&inst).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if created {
		return c.JSON(http.StatusCreated, inst)
	}
	return c.JSON(http.StatusOK, inst)
}
