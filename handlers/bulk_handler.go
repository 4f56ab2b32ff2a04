package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/metrics"
	"github.com/uniadmit/backoffice/models"
)

// BulkHandler applies one operation across a selection of records,
// continuing past individual failures.
type BulkHandler struct {
	Workers int
}

func NewBulkHandler(workers int) *BulkHandler {
	if workers < 1 {
		workers = 1
	}
	return &BulkHandler{Workers: workers}
}

var validStatuses = map[string]bool{
	"applied":   true,
	"admitted":  true,
	"withdrawn": true,
	"suspended": true,
}

/* -------------------- Payload structs -------------------- */

type bulkStatusPayload struct {
	IDs    []uint `json:"ids"`
	Status string `json:"status"`
}

type bulkTransferPayload struct {
	IDs          []uint `json:"ids"`
	ToBatchID    uint   `json:"to_batch_id"`
	TransferType string `json:"transfer_type"`
	Reason       string `json:"reason"`
}

func bulkResponse(c echo.Context, operation string, report *engine.BulkReport) error {
	metrics.BulkOperations.WithLabelValues(operation, string(report.Outcome())).Inc()
	status := http.StatusOK
	if report.Outcome() == engine.OutcomeAllFailed {
		status = http.StatusBadRequest
	}
	return c.JSON(status, map[string]any{
		"succeeded": len(report.Succeeded),
		"failed":    len(report.Failed),
		"outcome":   report.Outcome(),
		"report":    report,
	})
}

/* -------------------- Handlers -------------------- */

// POST /bulk/status — one status applied to every selected record.
func (h *BulkHandler) ChangeStatus(c echo.Context) error {
	var p bulkStatusPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))

	errs := map[string]string{}
	if len(p.IDs) == 0 {
		errs["ids"] = "select at least one record"
	}
	if !validStatuses[p.Status] {
		errs["status"] = "must be applied, admitted, withdrawn or suspended"
	}
	if len(errs) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	report := engine.RunBulk(c.Request().Context(), p.IDs, h.Workers, func(ctx context.Context, id uint) error {
		res := database.DB.WithContext(ctx).Model(&models.Student{}).
			Where("id = ?", id).Update("status", p.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("student %d not found", id)
		}
		return nil
	})
	return bulkResponse(c, "status_change", report)
}

// POST /bulk/transfers — the same gated transfer applied per record.
// The target batch is snapshotted once; the guarded seat update at
// commit time stays authoritative per record.
func (h *BulkHandler) Transfer(c echo.Context) error {
	var p bulkTransferPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	errs := map[string]string{}
	if len(p.IDs) == 0 {
		errs["ids"] = "select at least one record"
	}
	if p.ToBatchID == 0 {
		errs["to_batch_id"] = "target batch is required"
	}
	transferType, ok := engine.ParseTransferType(p.TransferType)
	if !ok {
		errs["transfer_type"] = "must be batch_change, branch_change or programme_change"
	}
	if len(errs) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var target models.Batch
	if err := database.DB.First(&target, "id = ?", p.ToBatchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "BATCH_NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	// transfers mutate seat counters; run sequentially
	report := engine.RunBulk(c.Request().Context(), p.IDs, 1, func(ctx context.Context, id uint) error {
		var stu models.Student
		if err := database.DB.WithContext(ctx).First(&stu, "id = ?", id).Error; err != nil {
			return fmt.Errorf("student %d: %w", id, err)
		}
		if stu.BatchID == nil {
			return fmt.Errorf("student %d has no batch", id)
		}
		var current models.Batch
		if err := database.DB.WithContext(ctx).First(&current, "id = ?", *stu.BatchID).Error; err != nil {
			return fmt.Errorf("student %d: %w", id, err)
		}

		req := engine.NewTransferRequest(stu.ID, current, target, transferType, p.Reason)
		if err := req.Validate(); err != nil {
			metrics.TransfersRejected.Inc()
			if errors.Is(err, engine.ErrTransferRejected) {
				return errors.New(req.RejectReason)
			}
			return err
		}
		metrics.TransfersValidated.Inc()

		if _, err := applyTransfer(req, p.Reason); err != nil {
			return err
		}
		target.FilledSeats++ // keep the local snapshot honest for the next gate
		return req.Commit()
	})
	return bulkResponse(c, "transfer", report)
}
