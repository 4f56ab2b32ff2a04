package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBulkContinuesPastFailure(t *testing.T) {
	ids := []uint{1, 2, 3, 4, 5}
	var mu sync.Mutex
	attempted := map[uint]bool{}

	report := RunBulk(context.Background(), ids, 1, func(_ context.Context, id uint) error {
		mu.Lock()
		attempted[id] = true
		mu.Unlock()
		if id == 3 {
			return errors.New("boom")
		}
		return nil
	})

	assert.Len(t, attempted, 5, "every record is attempted, no early abort")
	assert.Equal(t, []uint{1, 2, 4, 5}, report.Succeeded)
	assert.Equal(t, []uint{3}, report.Failed)
	assert.Equal(t, "boom", report.Errors[3])
	assert.Equal(t, OutcomePartial, report.Outcome())
}

func TestRunBulkPanicIsAFailure(t *testing.T) {
	report := RunBulk(context.Background(), []uint{1, 2}, 1, func(_ context.Context, id uint) error {
		if id == 1 {
			panic("oops")
		}
		return nil
	})
	require.Equal(t, []uint{1}, report.Failed)
	assert.Contains(t, report.Errors[1], "oops")
	assert.Equal(t, []uint{2}, report.Succeeded)
}

func TestRunBulkBoundedConcurrency(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0

	ids := make([]uint, 20)
	for i := range ids {
		ids[i] = uint(i + 1)
	}
	report := RunBulk(context.Background(), ids, 4, func(_ context.Context, _ uint) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	assert.Len(t, report.Succeeded, 20)
	assert.LessOrEqual(t, peak, 4)
	assert.Equal(t, OutcomeAllSucceeded, report.Outcome())
}

func TestRunBulkOutcomes(t *testing.T) {
	fail := func(_ context.Context, _ uint) error { return errors.New("no") }
	ok := func(_ context.Context, _ uint) error { return nil }

	assert.Equal(t, OutcomeAllFailed, RunBulk(context.Background(), []uint{1, 2}, 2, fail).Outcome())
	assert.Equal(t, OutcomeAllSucceeded, RunBulk(context.Background(), []uint{1, 2}, 2, ok).Outcome())
	assert.Equal(t, OutcomeAllSucceeded, RunBulk(context.Background(), nil, 2, ok).Outcome(), "empty selection is vacuously successful")
}

func TestRunBulkPreservesSubmissionOrder(t *testing.T) {
	ids := []uint{9, 3, 7, 1}
	report := RunBulk(context.Background(), ids, 8, func(_ context.Context, id uint) error {
		if id == 7 {
			return errors.New("no")
		}
		return nil
	})
	assert.Equal(t, []uint{9, 3, 1}, report.Succeeded)
	assert.Equal(t, []uint{7}, report.Failed)
}
