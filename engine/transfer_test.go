package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniadmit/backoffice/models"
)

var (
	cseA = models.Batch{ID: 1, Code: "CSE-A", ProgrammeType: "ug", Discipline: "Computer Science and Engineering", AcademicYear: 2025, TotalSeats: 60, FilledSeats: 30}
	cseB = models.Batch{ID: 2, Code: "CSE-B", ProgrammeType: "ug", Discipline: "Computer Science and Engineering", AcademicYear: 2025, TotalSeats: 60, FilledSeats: 30}
	meA  = models.Batch{ID: 3, Code: "ME-A", ProgrammeType: "ug", Discipline: "Mechanical Engineering", AcademicYear: 2025, TotalSeats: 60, FilledSeats: 30}
	csePG = models.Batch{ID: 4, Code: "CSE-PG", ProgrammeType: "pg", Discipline: "Computer Science and Engineering", AcademicYear: 2025, TotalSeats: 30, FilledSeats: 10}
)

func TestClassifyTransfer(t *testing.T) {
	assert.Equal(t, TransferBatchChange, ClassifyTransfer(cseA, cseB))
	assert.Equal(t, TransferBranchChange, ClassifyTransfer(cseA, meA))
	assert.Equal(t, TransferProgrammeChange, ClassifyTransfer(cseA, csePG))
}

func TestTransferValidateHappyPath(t *testing.T) {
	r := NewTransferRequest(7, cseA, cseB, TransferBatchChange, "section balancing")
	require.Equal(t, StateRequested, r.State)

	require.NoError(t, r.Validate())
	assert.Equal(t, StateValidated, r.State)

	require.NoError(t, r.Commit())
	assert.Equal(t, StateCommitted, r.State)
}

func TestTransferTypeMismatch(t *testing.T) {
	// batch_change requested across disciplines → rejected, message
	// names the type that would be correct
	r := NewTransferRequest(7, cseA, meA, TransferBatchChange, "")
	err := r.Validate()
	require.ErrorIs(t, err, ErrTransferRejected)
	assert.Equal(t, StateRejected, r.State)
	assert.Contains(t, r.RejectReason, string(TransferBranchChange))

	r = NewTransferRequest(7, cseA, csePG, TransferBranchChange, "")
	err = r.Validate()
	require.ErrorIs(t, err, ErrTransferRejected)
	assert.Contains(t, r.RejectReason, string(TransferProgrammeChange))
}

func TestTransferNoSeats(t *testing.T) {
	full := cseB
	full.FilledSeats = full.TotalSeats
	r := NewTransferRequest(7, cseA, full, TransferBatchChange, "")
	err := r.Validate()
	require.ErrorIs(t, err, ErrTransferRejected)
	assert.Contains(t, r.RejectReason, "no available seats")
}

func TestTransferSameBatch(t *testing.T) {
	r := NewTransferRequest(7, cseA, cseA, TransferBatchChange, "")
	require.ErrorIs(t, r.Validate(), ErrTransferRejected)
}

func TestTransferMissingBatch(t *testing.T) {
	r := NewTransferRequest(7, models.Batch{}, cseB, TransferBatchChange, "")
	require.ErrorIs(t, r.Validate(), ErrTransferRejected)
}

func TestTransferStateGuards(t *testing.T) {
	r := NewTransferRequest(7, cseA, cseB, TransferBatchChange, "")
	assert.Error(t, r.Commit(), "cannot commit before validation")

	require.NoError(t, r.Validate())
	assert.Error(t, r.Validate(), "cannot re-validate")

	require.NoError(t, r.Commit())
	assert.Error(t, r.Commit(), "cannot re-commit")

	// a failed external commit reverts to Validated
	r.Revert()
	assert.Equal(t, StateValidated, r.State)
}

func TestParseTransferType(t *testing.T) {
	tt, ok := ParseTransferType(" Batch_Change ")
	require.True(t, ok)
	assert.Equal(t, TransferBatchChange, tt)

	_, ok = ParseTransferType("sideways_change")
	assert.False(t, ok)
}
