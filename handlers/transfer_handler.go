package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/metrics"
	"github.com/uniadmit/backoffice/models"
)

type TransferHandler struct{}

func NewTransferHandler() *TransferHandler { return &TransferHandler{} }

/* -------------------- Payload structs -------------------- */

type transferPayload struct {
	StudentID    uint   `json:"student_id"`
	ToBatchID    uint   `json:"to_batch_id"`
	TransferType string `json:"transfer_type"` // batch_change | branch_change | programme_change
	Reason       string `json:"reason"`
}

func validateTransferPayload(p *transferPayload) map[string]string {
	errs := map[string]string{}
	if p.StudentID == 0 {
		errs["student_id"] = "student is required"
	}
	if p.ToBatchID == 0 {
		errs["to_batch_id"] = "target batch is required"
	}
	if _, ok := engine.ParseTransferType(p.TransferType); !ok {
		errs["transfer_type"] = "must be batch_change, branch_change or programme_change"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

/* -------------------- Helpers -------------------- */

// applyTransfer runs the external mutation step for one gated request:
// move the student, release the old seat, take the new one. The new
// seat is taken under a guard so a racing transfer cannot overfill.
func applyTransfer(req *engine.TransferRequest, reason string) (models.Transfer, error) {
	rec := models.Transfer{
		StudentID:    req.StudentID,
		FromBatchID:  req.Current.ID,
		ToBatchID:    req.Target.ID,
		TransferType: string(req.Type),
		Reason:       strings.TrimSpace(reason),
		TransferDate: time.Now(),
	}

	tx := database.DB.Begin()
	res := tx.Model(&models.Batch{}).
		Where("id = ? AND filled_seats < total_seats", req.Target.ID).
		UpdateColumn("filled_seats", gorm.Expr("filled_seats + 1"))
	if res.Error != nil {
		tx.Rollback()
		return rec, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return rec, engine.ErrCapacityExceeded
	}
	if err := tx.Model(&models.Batch{}).
		Where("id = ? AND filled_seats > 0", req.Current.ID).
		UpdateColumn("filled_seats", gorm.Expr("filled_seats - 1")).Error; err != nil {
		tx.Rollback()
		return rec, err
	}
	if err := tx.Model(&models.Student{}).Where("id = ?", req.StudentID).Updates(map[string]any{
		"batch_id":       req.Target.ID,
		"branch":         req.Target.Discipline,
		"programme_type": req.Target.ProgrammeType,
		"academic_year":  req.Target.AcademicYear,
	}).Error; err != nil {
		tx.Rollback()
		return rec, err
	}
	if err := tx.Create(&rec).Error; err != nil {
		tx.Rollback()
		return rec, err
	}
	if err := tx.Commit().Error; err != nil {
		return rec, err
	}
	return rec, nil
}

/* -------------------- Handlers -------------------- */

// POST /transfers — gate through the workflow, then mutate.
func (h *TransferHandler) Create(c echo.Context) error {
	var p transferPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if errs := validateTransferPayload(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}
	transferType, _ := engine.ParseTransferType(p.TransferType)

	var stu models.Student
	if err := database.DB.First(&stu, "id = ?", p.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "STUDENT_NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if stu.BatchID == nil {
		return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "STUDENT_NOT_ASSIGNED"})
	}

	var current, target models.Batch
	if err := database.DB.First(&current, "id = ?", *stu.BatchID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if err := database.DB.First(&target, "id = ?", p.ToBatchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "BATCH_NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	req := engine.NewTransferRequest(stu.ID, current, target, transferType, p.Reason)
	if err := req.Validate(); err != nil {
		metrics.TransfersRejected.Inc()
		if errors.Is(err, engine.ErrTransferRejected) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]string{
				"error":  "TRANSFER_REJECTED",
				"reason": req.RejectReason,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	metrics.TransfersValidated.Inc()

	rec, err := applyTransfer(req, p.Reason)
	if err != nil {
		// external step failed after the gate: request stays Validated,
		// nothing was partially applied
		if errors.Is(err, engine.ErrCapacityExceeded) {
			return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "CAPACITY_EXCEEDED"})
		}
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := req.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"record": rec,
		"state":  req.State,
	})
}

// GET /transfers — ?student_id=&type=&from_batch=&to_batch=&limit=&offset=
func (h *TransferHandler) List(c echo.Context) error {
	limit := atoiOr(c.QueryParam("limit"), 20)
	if limit < 1 {
		limit = 1
	} else if limit > 100 {
		limit = 100
	}
	offset := atoiOr(c.QueryParam("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	tx := database.DB.Model(&models.Transfer{})
	if id := atoiOr(c.QueryParam("student_id"), 0); id > 0 {
		tx = tx.Where("student_id = ?", id)
	}
	if s := strings.TrimSpace(c.QueryParam("type")); s != "" {
		if tt, ok := engine.ParseTransferType(s); ok {
			tx = tx.Where("transfer_type = ?", string(tt))
		}
	}
	if id := atoiOr(c.QueryParam("from_batch"), 0); id > 0 {
		tx = tx.Where("from_batch_id = ?", id)
	}
	if id := atoiOr(c.QueryParam("to_batch"), 0); id > 0 {
		tx = tx.Where("to_batch_id = ?", id)
	}

	var items []models.Transfer
	if err := tx.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// GET /transfers/:id — detail plus a student summary.
func (h *TransferHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var rec models.Transfer
	if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var stu models.Student
	if err := database.DB.First(&stu, "id = ?", rec.StudentID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_STUDENT_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":            rec.ID,
		"transfer_type": rec.TransferType,
		"from_batch_id": rec.FromBatchID,
		"to_batch_id":   rec.ToBatchID,
		"reason":        rec.Reason,
		"transfer_date": rec.TransferDate.Format("2006-01-02"),
		"created_at":    rec.CreatedAt,
		"student": map[string]any{
			"id":      stu.ID,
			"roll_no": stu.RollNo,
			"name":    stu.Name,
			"branch":  stu.Branch,
			"status":  stu.Status,
		},
	})
}
