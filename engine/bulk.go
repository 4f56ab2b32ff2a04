package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BulkOutcome is the three-way user-facing result of a bulk run.
type BulkOutcome string

const (
	OutcomeAllSucceeded BulkOutcome = "all_succeeded"
	OutcomePartial      BulkOutcome = "partial"
	OutcomeAllFailed    BulkOutcome = "all_failed"
)

// BulkReport tallies a run. Succeeded and Failed preserve the order the
// ids were submitted in.
type BulkReport struct {
	Succeeded []uint          `json:"succeeded"`
	Failed    []uint          `json:"failed"`
	Errors    map[uint]string `json:"errors,omitempty"`
}

func (r *BulkReport) Outcome() BulkOutcome {
	switch {
	case len(r.Failed) == 0:
		return OutcomeAllSucceeded
	case len(r.Succeeded) == 0:
		return OutcomeAllFailed
	default:
		return OutcomePartial
	}
}

// RunBulk applies op to every id. One record's failure — error or panic
// — never aborts the rest; partial completion is a reportable outcome,
// not an error state. limit bounds concurrency (≤ 1 = sequential).
func RunBulk(ctx context.Context, ids []uint, limit int, op func(context.Context, uint) error) *BulkReport {
	if limit < 1 {
		limit = 1
	}

	results := make([]error, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = runOne(ctx, id, op)
			return nil // failures live in results, the group never cancels
		})
	}
	_ = g.Wait()

	report := &BulkReport{}
	for i, id := range ids {
		if err := results[i]; err != nil {
			report.Failed = append(report.Failed, id)
			if report.Errors == nil {
				report.Errors = map[uint]string{}
			}
			report.Errors[id] = err.Error()
		} else {
			report.Succeeded = append(report.Succeeded, id)
		}
	}
	return report
}

func runOne(ctx context.Context, id uint, op func(context.Context, uint) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("operation panicked: %v", p)
		}
	}()
	return op(ctx, id)
}
