package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/models"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// GET /admin/dashboard?programme=&year=
// Seat usage per batch plus record counts per status, for the intake
// overview page.
func (h *DashboardHandler) Overview(c echo.Context) error {
	batchTx := database.DB.Model(&models.Batch{})
	studentTx := database.DB.Model(&models.Student{})
	if s := strings.TrimSpace(c.QueryParam("programme")); s != "" {
		if p, ok := engine.ParseProgramme(s); ok {
			batchTx = batchTx.Where("programme_type = ?", string(p))
			studentTx = studentTx.Where("programme_type = ?", string(p))
		}
	}
	if y := atoiOr(c.QueryParam("year"), 0); y > 0 {
		batchTx = batchTx.Where("academic_year = ?", y)
		studentTx = studentTx.Where("academic_year = ?", y)
	}

	var batches []models.Batch
	if err := batchTx.Order("code ASC").Find(&batches).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	seats := make([]map[string]any, 0, len(batches))
	totalSeats, totalFilled := 0, 0
	for _, b := range batches {
		totalSeats += b.TotalSeats
		totalFilled += b.FilledSeats
		seats = append(seats, map[string]any{
			"batch_id":        b.ID,
			"code":            b.Code,
			"discipline":      b.Discipline,
			"total_seats":     b.TotalSeats,
			"filled_seats":    b.FilledSeats,
			"available_seats": b.AvailableSeats(),
		})
	}

	type statusRow struct {
		Status string
		Count  int64
	}
	var statuses []statusRow
	if err := studentTx.Select("status, COUNT(*) AS count").Group("status").Scan(&statuses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	byStatus := map[string]int64{}
	for _, r := range statuses {
		byStatus[r.Status] = r.Count
	}

	return c.JSON(http.StatusOK, map[string]any{
		"batches":      seats,
		"total_seats":  totalSeats,
		"total_filled": totalFilled,
		"by_status":    byStatus,
	})
}
