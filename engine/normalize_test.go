package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEnum(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"M", "Male"},
		{"m", "Male"},
		{"MALE", "Male"},
		{" Female ", "Female"},
		{"Gender-Neutral", "Other"},
		{"gender neutral", "Other"},
		{"Martian", "Martian"}, // unknown falls through trimmed
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeEnum(tc.in, genderMap), "input %q", tc.in)
	}

	assert.Equal(t, "YES", NormalizeEnum("y", yesNoMap))
	assert.Equal(t, "NO", NormalizeEnum(" n ", yesNoMap))
	// nil mapping must not panic, value passes through
	assert.Equal(t, "anything", NormalizeEnum(" anything ", nil))
}

func TestCleanQualifiedName(t *testing.T) {
	assert.Equal(t, "Computer Science and Engineering",
		CleanQualifiedName("Computer Science and Engineering (Self Financed)"))
	assert.Equal(t, "Civil Engineering", CleanQualifiedName("  Civil Engineering  "))
	assert.Equal(t, "Mechanical Engineering",
		CleanQualifiedName("Mechanical Engineering (Evening) (Old)"))
	assert.Equal(t, "", CleanQualifiedName("(only qualifier)"))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-06-01", NormalizeDate("2025-06-01 00:00:00"))
	assert.Equal(t, "2025-06-01", NormalizeDate("2025-06-01T10:30:00Z"))
	assert.Equal(t, "2025-06-01", NormalizeDate("  2025-06-01  "))
	assert.Equal(t, "", NormalizeDate("   "))
	// unparseable input passes through verbatim
	assert.Equal(t, "not-a-date", NormalizeDate("not-a-date"))
}
