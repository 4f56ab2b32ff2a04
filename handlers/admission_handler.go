package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/metrics"
	"github.com/uniadmit/backoffice/models"
)

type AdmissionHandler struct{}

func NewAdmissionHandler() *AdmissionHandler { return &AdmissionHandler{} }

/* -------------------- Helpers -------------------- */

// intakeScope reads programme type and academic year, trying query
// params first and the raw row itself second. Year falls back to the
// institution's configured current year.
func intakeScope(c echo.Context, raw engine.RawRecord) (engine.Programme, int, error) {
	progStr := strings.TrimSpace(c.QueryParam("programme"))
	if progStr == "" {
		for _, k := range []string{"programme", "programmeType", "programme_type", "Programme Type"} {
			if v, ok := raw[k]; ok {
				if s, sok := v.(string); sok && strings.TrimSpace(s) != "" {
					progStr = s
					break
				}
			}
		}
	}
	p, ok := engine.ParseProgramme(progStr)
	if !ok {
		return "", 0, fmt.Errorf("invalid programme %q", progStr)
	}
	year := atoiOr(strings.TrimSpace(c.QueryParam("year")), 0)
	if year == 0 {
		year = defaultAcademicYear()
	}
	if year == 0 {
		return "", 0, errors.New("academic year is required")
	}
	return p, year, nil
}

func defaultAcademicYear() int {
	type tmp struct{ CurrentAcademicYear int }
	var t tmp
	if err := database.DB.Table("institutions").Select("current_academic_year").First(&t).Error; err != nil {
		return 0
	}
	return t.CurrentAcademicYear
}

// getRollNoLimit reads the configured roll-number length (0 = not enforced).
func getRollNoLimit() int {
	type tmp struct{ RollNoDigits int }
	var t tmp
	if err := database.DB.Table("institutions").Select("roll_no_digits").First(&t).Error; err != nil {
		return 0
	}
	if t.RollNoDigits < 0 {
		return 0
	}
	return t.RollNoDigits
}

func parseFloatOr(s string, def float64) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return def
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return n
}

// studentFromRecord maps a canonical record onto the storage model.
func studentFromRecord(rec engine.CanonicalRecord, p engine.Programme, year int) models.Student {
	var dob *time.Time
	if v := rec.Get("dob"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			dob = &d
		}
	}
	return models.Student{
		RollNo:          rec.Get("rollNo"),
		Name:            rec.Get("name"),
		Email:           rec.Get("email"),
		Phone:           rec.Get("phone"),
		Gender:          rec.Get("gender"),
		DOB:             dob,
		Nationality:     rec.Get("nationality"),
		Category:        rec.Get("category"),
		CategoryRemarks: rec.Get("categoryRemarks"),
		Pwd:             rec.Get("pwd"),
		PwdCategory:     rec.Get("pwdCategory"),
		PwdRemarks:      rec.Get("pwdRemarks"),
		Income:          parseFloatOr(rec.Get("income"), 0),
		IncomeBracket:   rec.Get("incomeBracket"),
		FatherName:      rec.Get("fatherName"),
		FatherMobile:    rec.Get("fatherMobile"),
		MotherName:      rec.Get("motherName"),
		MotherMobile:    rec.Get("motherMobile"),
		Address:         rec.Get("address"),
		Branch:          rec.Get("branch"),
		ProgrammeType:   string(p),
		AcademicYear:    year,
		TenthPercent:    parseFloatOr(rec.Get("tenthPercent"), 0),
		TwelfthPercent:  parseFloatOr(rec.Get("twelfthPercent"), 0),
		GateScore:       parseFloatOr(rec.Get("gateScore"), 0),
		ResearchArea:    rec.Get("researchArea"),
		Status:          "applied",
	}
}

// recordFromStudent rebuilds the canonical record from storage, for
// edit-mode validation and for the ordered export layout.
func recordFromStudent(s *models.Student) engine.CanonicalRecord {
	rec := engine.CanonicalRecord{}
	p := engine.Programme(s.ProgrammeType)
	for _, f := range engine.FieldsFor(p) {
		rec[f.Key] = ""
	}
	rec.Set("rollNo", s.RollNo)
	rec.Set("name", s.Name)
	rec.Set("email", s.Email)
	rec.Set("phone", s.Phone)
	rec.Set("gender", s.Gender)
	if s.DOB != nil {
		rec.Set("dob", s.DOB.Format("2006-01-02"))
	}
	rec.Set("nationality", s.Nationality)
	rec.Set("category", s.Category)
	rec.Set("categoryRemarks", s.CategoryRemarks)
	rec.Set("pwd", s.Pwd)
	rec.Set("pwdCategory", s.PwdCategory)
	rec.Set("pwdRemarks", s.PwdRemarks)
	if s.Income > 0 {
		rec.Set("income", strconv.FormatFloat(s.Income, 'f', -1, 64))
	}
	rec.Set("incomeBracket", s.IncomeBracket)
	rec.Set("fatherName", s.FatherName)
	rec.Set("fatherMobile", s.FatherMobile)
	rec.Set("motherName", s.MotherName)
	rec.Set("motherMobile", s.MotherMobile)
	rec.Set("address", s.Address)
	rec.Set("branch", s.Branch)
	if _, ok := rec["tenthPercent"]; ok && s.TenthPercent > 0 {
		rec.Set("tenthPercent", strconv.FormatFloat(s.TenthPercent, 'f', -1, 64))
	}
	if _, ok := rec["twelfthPercent"]; ok && s.TwelfthPercent > 0 {
		rec.Set("twelfthPercent", strconv.FormatFloat(s.TwelfthPercent, 'f', -1, 64))
	}
	if _, ok := rec["gateScore"]; ok && s.GateScore > 0 {
		rec.Set("gateScore", strconv.FormatFloat(s.GateScore, 'f', -1, 64))
	}
	if _, ok := rec["researchArea"]; ok {
		rec.Set("researchArea", s.ResearchArea)
	}
	return rec
}

// batchSnapshot fetches the read-mostly batch universe for one
// operation. It is not refreshed mid-operation; the authoritative
// capacity check is the guarded UPDATE at commit time.
func batchSnapshot(p engine.Programme, year int) ([]models.Batch, error) {
	var batches []models.Batch
	err := database.DB.
		Where("programme_type = ? AND academic_year = ?", string(p), year).
		Find(&batches).Error
	return batches, err
}

// assignSeat inserts the student and takes one seat, guarded so a
// racing operation can never overfill the batch.
func assignSeat(tx *gorm.DB, stu *models.Student, batchID uint) error {
	res := tx.Model(&models.Batch{}).
		Where("id = ? AND filled_seats < total_seats", batchID).
		UpdateColumn("filled_seats", gorm.Expr("filled_seats + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return engine.ErrCapacityExceeded
	}
	stu.BatchID = &batchID
	stu.Status = "admitted"
	return tx.Create(stu).Error
}

/* -------------------- Handlers: intake -------------------- */

// POST /admissions?programme=ug&year=2025 — one raw row from a form.
func (h *AdmissionHandler) Create(c echo.Context) error {
	var raw engine.RawRecord
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	metrics.RecordsIngested.Inc()

	p, year, err := intakeScope(c, raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_SCOPE", "detail": err.Error()})
	}

	rec := engine.Resolve(raw, p)
	if errs := engine.Validate("", rec, p, false); len(errs) > 0 {
		metrics.RecordsRejected.WithLabelValues("validation").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": engine.FieldErrors(errs),
		})
	}
	if lim := getRollNoLimit(); lim > 0 && len(rec.Get("rollNo")) > lim {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"rollNo": fmt.Sprintf("roll number must not exceed %d characters", lim)},
		})
	}

	batches, err := batchSnapshot(p, year)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	batch, err := engine.Match(rec.Get("branch"), batches, p, year)
	if err != nil {
		metrics.RecordsRejected.WithLabelValues("no_batch").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]string{
			"error":  "BATCH_NOT_FOUND",
			"detail": err.Error(),
		})
	}
	if err := engine.CheckCapacity(batch, 0); err != nil {
		metrics.RecordsRejected.WithLabelValues("capacity").Inc()
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"error":  "CAPACITY_EXCEEDED",
			"detail": err.Error(),
		})
	}

	stu := studentFromRecord(rec, p, year)
	tx := database.DB.Begin()
	if err := assignSeat(tx, &stu, batch.ID); err != nil {
		tx.Rollback()
		if errors.Is(err, engine.ErrCapacityExceeded) {
			metrics.RecordsRejected.WithLabelValues("capacity").Inc()
			return echo.NewHTTPError(http.StatusConflict, map[string]string{"error": "CAPACITY_EXCEEDED"})
		}
		metrics.RecordsRejected.WithLabelValues("persistence").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := tx.Commit().Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	metrics.RecordsAccepted.Inc()
	return c.JSON(http.StatusCreated, map[string]any{
		"student": stu,
		"batch":   batch.Code,
	})
}

type importIssue struct {
	Index  int               `json:"index"`
	Ref    string            `json:"ref,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// POST /admissions/import?programme=ug&year=2025 — an uploaded sheet,
// already parsed into rows by the upload collaborator. Each row is
// written independently; one bad row never aborts the run.
func (h *AdmissionHandler) Import(c echo.Context) error {
	var rows []engine.RawRecord
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if len(rows) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "EMPTY_IMPORT"})
	}

	p, year, err := intakeScope(c, rows[0])
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_SCOPE", "detail": err.Error()})
	}
	batches, err := batchSnapshot(p, year)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	runID := uuid.NewString()
	rollLimit := getRollNoLimit()
	queued := map[uint]int{} // same-batch assignments already accepted in this run
	accepted := []uint{}
	issues := []importIssue{}

	for i, raw := range rows {
		metrics.RecordsIngested.Inc()
		ref := fmt.Sprintf("row %d", i+1)

		rec := engine.Resolve(raw, p)
		if rec.Get("rollNo") != "" {
			ref = rec.Get("rollNo")
		}

		verrs := engine.Validate(ref, rec, p, false)
		if rollLimit > 0 && len(rec.Get("rollNo")) > rollLimit {
			verrs = append(verrs, engine.ValidationError{
				RecordRef: ref, FieldKey: "rollNo",
				Message: fmt.Sprintf("roll number must not exceed %d characters", rollLimit),
			})
		}
		if len(verrs) > 0 {
			metrics.RecordsRejected.WithLabelValues("validation").Inc()
			issues = append(issues, importIssue{Index: i, Ref: ref, Fields: engine.FieldErrors(verrs)})
			continue
		}

		batch, err := engine.Match(rec.Get("branch"), batches, p, year)
		if err != nil {
			metrics.RecordsRejected.WithLabelValues("no_batch").Inc()
			issues = append(issues, importIssue{Index: i, Ref: ref, Reason: err.Error()})
			continue
		}
		if err := engine.CheckCapacity(batch, queued[batch.ID]); err != nil {
			metrics.RecordsRejected.WithLabelValues("capacity").Inc()
			issues = append(issues, importIssue{Index: i, Ref: ref, Reason: err.Error()})
			continue
		}

		stu := studentFromRecord(rec, p, year)
		tx := database.DB.Begin()
		if err := assignSeat(tx, &stu, batch.ID); err != nil {
			tx.Rollback()
			metrics.RecordsRejected.WithLabelValues("persistence").Inc()
			issues = append(issues, importIssue{Index: i, Ref: ref, Reason: err.Error()})
			continue
		}
		if err := tx.Commit().Error; err != nil {
			metrics.RecordsRejected.WithLabelValues("persistence").Inc()
			issues = append(issues, importIssue{Index: i, Ref: ref, Reason: err.Error()})
			continue
		}

		metrics.RecordsAccepted.Inc()
		queued[batch.ID]++
		accepted = append(accepted, stu.ID)
	}

	status := http.StatusCreated
	if len(accepted) == 0 {
		status = http.StatusBadRequest
	}
	return c.JSON(status, map[string]any{
		"run_id":   runID,
		"total":    len(rows),
		"accepted": accepted,
		"rejected": issues,
	})
}

/* -------------------- Handlers: CRUD -------------------- */

// GET /admissions?q=&programme=&year=&status=&batch_id=&page=&size=
func (h *AdmissionHandler) List(c echo.Context) error {
	page := atoiOr(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := atoiOr(c.QueryParam("size"), 20)
	if size < 1 {
		size = 1
	} else if size > 100 {
		size = 100
	}

	tx := database.DB.Model(&models.Student{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + q + "%"
		tx = tx.Where("roll_no ILIKE ? OR name ILIKE ? OR email ILIKE ? OR branch ILIKE ?", like, like, like, like)
	}
	if s := strings.TrimSpace(c.QueryParam("programme")); s != "" {
		if p, ok := engine.ParseProgramme(s); ok {
			tx = tx.Where("programme_type = ?", string(p))
		}
	}
	if y := atoiOr(c.QueryParam("year"), 0); y > 0 {
		tx = tx.Where("academic_year = ?", y)
	}
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		tx = tx.Where("status = ?", strings.ToLower(s))
	}
	if id := atoiOr(c.QueryParam("batch_id"), 0); id > 0 {
		tx = tx.Where("batch_id = ?", id)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_COUNT_FAILED"})
	}
	var items []models.Student
	if err := tx.Order("id DESC").Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  items,
		"page":  page,
		"size":  size,
		"total": total,
	})
}

// GET /admissions/:id — the record plus its export layout (fields in
// registry order, none dropped).
func (h *AdmissionHandler) Get(c echo.Context) error {
	var stu models.Student
	if err := database.DB.First(&stu, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	rec := recordFromStudent(&stu)
	return c.JSON(http.StatusOK, map[string]any{
		"student": stu,
		"fields":  engine.Export(rec, engine.Programme(stu.ProgrammeType)),
	})
}

// PUT /admissions/:id — edit flow. Identity-defining enums on an
// existing record are not re-enforced; only the edited fields are.
// Batch/programme moves go through /transfers, never through here.
func (h *AdmissionHandler) Update(c echo.Context) error {
	var stu models.Student
	if err := database.DB.First(&stu, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var raw engine.RawRecord
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}

	p := engine.Programme(stu.ProgrammeType)
	edited := engine.Resolve(raw, p)
	merged := recordFromStudent(&stu)
	for key, v := range edited {
		if v != "" {
			merged.Set(key, v)
		}
	}
	if errs := engine.Validate("", merged, p, true); len(errs) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": engine.FieldErrors(errs),
		})
	}

	updated := studentFromRecord(merged, p, stu.AcademicYear)
	updated.ID = stu.ID
	updated.BatchID = stu.BatchID
	updated.Status = stu.Status
	updated.CreatedAt = stu.CreatedAt
	if err := database.DB.Save(&updated).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, updated)
}

// DELETE /admissions/:id — releases the seat if one was held.
func (h *AdmissionHandler) Delete(c echo.Context) error {
	var stu models.Student
	if err := database.DB.First(&stu, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	tx := database.DB.Begin()
	if stu.BatchID != nil {
		if err := tx.Model(&models.Batch{}).
			Where("id = ? AND filled_seats > 0", *stu.BatchID).
			UpdateColumn("filled_seats", gorm.Expr("filled_seats - 1")).Error; err != nil {
			tx.Rollback()
			return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_UPDATE_FAILED"})
		}
	}
	if err := tx.Delete(&stu).Error; err != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if err := tx.Commit().Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
