package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uniadmit/backoffice/models"
)

type TransferType string

const (
	TransferBatchChange     TransferType = "batch_change"
	TransferBranchChange    TransferType = "branch_change"
	TransferProgrammeChange TransferType = "programme_change"
)

func ParseTransferType(s string) (TransferType, bool) {
	switch TransferType(strings.ToLower(strings.TrimSpace(s))) {
	case TransferBatchChange:
		return TransferBatchChange, true
	case TransferBranchChange:
		return TransferBranchChange, true
	case TransferProgrammeChange:
		return TransferProgrammeChange, true
	default:
		return "", false
	}
}

type TransferState string

const (
	StateRequested TransferState = "requested"
	StateValidated TransferState = "validated"
	StateCommitted TransferState = "committed"
	StateRejected  TransferState = "rejected"
)

// ErrTransferRejected wraps every Requested→Rejected transition reason.
var ErrTransferRejected = errors.New("transfer rejected")

// TransferRequest is the state machine guarding a re-assignment:
// Requested → Validated → Committed, or Requested → Rejected. The
// engine only gates; the actual seat mutation is the caller's external
// commit step.
type TransferRequest struct {
	StudentID uint
	Current   models.Batch
	Target    models.Batch
	Type      TransferType
	Reason    string

	State        TransferState
	RejectReason string
}

func NewTransferRequest(studentID uint, current, target models.Batch, t TransferType, reason string) *TransferRequest {
	return &TransferRequest{
		StudentID: studentID,
		Current:   current,
		Target:    target,
		Type:      t,
		Reason:    reason,
		State:     StateRequested,
	}
}

// ClassifyTransfer derives the actual move type from the relationship
// between the two batches.
func ClassifyTransfer(current, target models.Batch) TransferType {
	if !strings.EqualFold(current.ProgrammeType, target.ProgrammeType) {
		return TransferProgrammeChange
	}
	if normBranch(current.Discipline) != normBranch(target.Discipline) {
		return TransferBranchChange
	}
	return TransferBatchChange
}

// Validate performs the Requested→Validated transition. Any failed gate
// moves the request to Rejected instead, recording a human-readable
// reason, and returns ErrTransferRejected.
func (r *TransferRequest) Validate() error {
	if r.State != StateRequested {
		return fmt.Errorf("cannot validate transfer in state %q", r.State)
	}
	if r.Current.ID == 0 || r.Target.ID == 0 {
		return r.reject("both current and target batch are required")
	}
	if r.Current.ID == r.Target.ID {
		return r.reject("target batch is the same as the current batch")
	}
	if r.Target.AvailableSeats() <= 0 {
		return r.reject(fmt.Sprintf("target batch %s has no available seats (%d/%d filled)",
			r.Target.Code, r.Target.FilledSeats, r.Target.TotalSeats))
	}
	if actual := ClassifyTransfer(r.Current, r.Target); actual != r.Type {
		return r.reject(fmt.Sprintf("requested %s but batches %s → %s imply %s; use %s instead",
			r.Type, r.Current.Code, r.Target.Code, actual, actual))
	}
	r.State = StateValidated
	return nil
}

// Commit marks the Validated→Committed transition after the external
// mutation endpoint succeeded. Committing from any other state is a
// programming error.
func (r *TransferRequest) Commit() error {
	if r.State != StateValidated {
		return fmt.Errorf("cannot commit transfer in state %q", r.State)
	}
	r.State = StateCommitted
	return nil
}

// Revert returns a failed external commit back to Validated so the
// caller can surface the failure and retry manually.
func (r *TransferRequest) Revert() {
	if r.State == StateCommitted {
		r.State = StateValidated
	}
}

func (r *TransferRequest) reject(reason string) error {
	r.State = StateRejected
	r.RejectReason = reason
	return fmt.Errorf("%w: %s", ErrTransferRejected, reason)
}
