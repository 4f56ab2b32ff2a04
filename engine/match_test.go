package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniadmit/backoffice/models"
)

func testBatches() []models.Batch {
	return []models.Batch{
		{ID: 1, Code: "CSE-2025", Name: "CSE 2025 Intake", ProgrammeType: "ug", Discipline: "Computer Science and Engineering", AcademicYear: 2025, TotalSeats: 60, FilledSeats: 10},
		{ID: 2, Code: "ME-2025", Name: "Mechanical 2025", ProgrammeType: "ug", Discipline: "Mechanical Engineering", AcademicYear: 2025, TotalSeats: 60, FilledSeats: 60},
		{ID: 3, Code: "CSE-PG-2025", Name: "M.Tech CSE 2025", ProgrammeType: "pg", Discipline: "Computer Science and Engineering", AcademicYear: 2025, TotalSeats: 30, FilledSeats: 5},
		{ID: 4, Code: "CE-2024", Name: "Civil 2024", ProgrammeType: "ug", Discipline: "Civil Engineering", AcademicYear: 2024, TotalSeats: 60, FilledSeats: 0},
	}
}

func TestMatchExact(t *testing.T) {
	b, err := Match("Computer Science and Engineering", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	// code and display name count too, case-insensitively
	b, err = Match("cse-2025", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	b, err = Match("MECHANICAL 2025", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)
}

func TestMatchViaAliasTable(t *testing.T) {
	b, err := Match("CSE", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	b, err = Match("computer science", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)
}

func TestMatchFuzzy(t *testing.T) {
	// record branch contains the batch discipline
	b, err := Match("Dept of Mechanical Engineering", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)

	// batch discipline contains the record branch
	b, err = Match("Science and Engineering", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	// a "(...)" qualifier never defeats the exact strategy
	b, err = Match("Mechanical Engineering (Evening)", testBatches(), ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)
}

func TestMatchScope(t *testing.T) {
	// same discipline, different programme scope
	b, err := Match("CSE", testBatches(), ProgrammePG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(3), b.ID)

	// year out of scope
	_, err = Match("Civil Engineering", testBatches(), ProgrammeUG, 2025)
	require.ErrorIs(t, err, ErrBatchNotFound)

	_, err = Match("CSE", nil, ProgrammeUG, 2025)
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestMatchTieIsNotFound(t *testing.T) {
	batches := []models.Batch{
		{ID: 10, Code: "CSE-A", Discipline: "Computer Science and Engineering", ProgrammeType: "ug", AcademicYear: 2025, TotalSeats: 60},
		{ID: 11, Code: "CSE-B", Discipline: "Computer Science and Engineering", ProgrammeType: "ug", AcademicYear: 2025, TotalSeats: 60},
	}
	_, err := Match("Computer Science and Engineering", batches, ProgrammeUG, 2025)
	require.ErrorIs(t, err, ErrBatchNotFound, "ties are never silently broken")
}

func TestMatchNotFound(t *testing.T) {
	_, err := Match("Astrobiology", testBatches(), ProgrammeUG, 2025)
	require.ErrorIs(t, err, ErrBatchNotFound)
	assert.Contains(t, err.Error(), "Astrobiology", "error keeps the offending branch")

	_, err = Match("", testBatches(), ProgrammeUG, 2025)
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestCheckCapacity(t *testing.T) {
	full := models.Batch{Code: "ME-2025", TotalSeats: 60, FilledSeats: 60}
	require.ErrorIs(t, CheckCapacity(full, 0), ErrCapacityExceeded)

	open := models.Batch{Code: "CSE-2025", TotalSeats: 60, FilledSeats: 59}
	assert.NoError(t, CheckCapacity(open, 0))
	// queued same-batch assignments in the current run count too
	require.ErrorIs(t, CheckCapacity(open, 1), ErrCapacityExceeded)
}

func TestRegisterDisciplineAliases(t *testing.T) {
	RegisterDisciplineAliases(map[string]string{" AeRo ": "Aerospace Engineering", "": "ignored", "x": ""})
	batches := []models.Batch{
		{ID: 20, Code: "AE-2025", Discipline: "Aerospace Engineering", ProgrammeType: "ug", AcademicYear: 2025, TotalSeats: 40},
	}
	b, err := Match("aero", batches, ProgrammeUG, 2025)
	require.NoError(t, err)
	assert.Equal(t, uint(20), b.ID)
}
