package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDirectKey(t *testing.T) {
	rec := Resolve(RawRecord{"name": "asha verma", "email": "Asha@Example.COM"}, ProgrammeUG)
	assert.Equal(t, "ASHA VERMA", rec.Get("name"), "proper-noun fields uppercase")
	assert.Equal(t, "asha@example.com", rec.Get("email"), "email fields lowercase")
}

// Every declared alias, in any case, must resolve to the same value as
// the canonical key itself.
func TestResolveAliasEquivalence(t *testing.T) {
	for _, f := range Fields() {
		want := Resolve(RawRecord{f.Key: "Sample Value"}, ProgrammePHD).Get(f.Key)
		if f.Domain == DomainEnum {
			continue // enum normalization makes raw text comparison moot
		}
		for _, alias := range f.Aliases {
			for _, spelled := range []string{alias, strings.ToUpper(alias), strings.ToLower(alias)} {
				got := Resolve(RawRecord{spelled: "Sample Value"}, ProgrammePHD).Get(f.Key)
				assert.Equal(t, want, got, "field %s via alias %q", f.Key, spelled)
			}
		}
	}
}

func TestResolveBackendKey(t *testing.T) {
	rec := Resolve(RawRecord{"father_name": "ram kumar"}, ProgrammeUG)
	assert.Equal(t, "RAM KUMAR", rec.Get("fatherName"))
}

func TestResolveKeyVariants(t *testing.T) {
	// mechanical guesses: snake_case, Title Case, space-separated
	assert.Equal(t, "9876500001", Resolve(RawRecord{"father_mobile": "9876500001"}, ProgrammeUG).Get("fatherMobile"))
	assert.Equal(t, "9876500001", Resolve(RawRecord{"Father Mobile": "9876500001"}, ProgrammeUG).Get("fatherMobile"))
	assert.Equal(t, "9876500001", Resolve(RawRecord{"father mobile": "9876500001"}, ProgrammeUG).Get("fatherMobile"))
}

func TestResolvePrecedence(t *testing.T) {
	// canonical key beats backend key beats alias
	rec := Resolve(RawRecord{
		"name":         "direct",
		"student_name": "backend",
		"Student Name": "alias",
	}, ProgrammeUG)
	assert.Equal(t, "DIRECT", rec.Get("name"))

	rec = Resolve(RawRecord{
		"student_name": "backend",
		"Student Name": "alias",
	}, ProgrammeUG)
	assert.Equal(t, "BACKEND", rec.Get("name"))
}

func TestResolveSkipsEmptyHits(t *testing.T) {
	// an empty value under a higher-precedence key must not shadow a
	// populated alias
	rec := Resolve(RawRecord{"name": "  ", "Student Name": "from alias"}, ProgrammeUG)
	assert.Equal(t, "FROM ALIAS", rec.Get("name"))
}

func TestResolveNormalizes(t *testing.T) {
	rec := Resolve(RawRecord{
		"gender": "m",
		"pwd":    "y",
		"dob":    "2004-02-11T00:00:00Z",
		"branch": "Computer Science and Engineering (Self Financed)",
	}, ProgrammeUG)
	assert.Equal(t, "Male", rec.Get("gender"))
	assert.Equal(t, "YES", rec.Get("pwd"))
	assert.Equal(t, "2004-02-11", rec.Get("dob"))
	assert.Equal(t, "Computer Science and Engineering", rec.Get("branch"))
}

func TestResolveNumericCellValues(t *testing.T) {
	// spreadsheet cells frequently arrive as float64 via JSON
	rec := Resolve(RawRecord{"income": float64(150000), "Annual Income": "ignored-lower-precedence"}, ProgrammeUG)
	assert.Equal(t, "150000", rec.Get("income"))
}

func TestResolveProgrammeScope(t *testing.T) {
	raw := RawRecord{"gateScore": "712", "tenthPercent": "91.2"}

	ug := Resolve(raw, ProgrammeUG)
	_, hasGate := ug["gateScore"]
	assert.False(t, hasGate, "gateScore is not a UG field")
	assert.Equal(t, "91.2", ug.Get("tenthPercent"))

	pg := Resolve(raw, ProgrammePG)
	assert.Equal(t, "712", pg.Get("gateScore"))
	_, hasTenth := pg["tenthPercent"]
	assert.False(t, hasTenth, "tenthPercent is not a PG field")
}

func TestResolveNeverFails(t *testing.T) {
	rec := Resolve(RawRecord{}, ProgrammeUG)
	for _, f := range FieldsFor(ProgrammeUG) {
		v, ok := rec[f.Key]
		require.True(t, ok, "field %s missing from canonical record", f.Key)
		assert.Empty(t, v)
	}
}

// Resolving then re-serializing through the export ordering must
// reproduce the full value set: no field silently dropped.
func TestExportRoundTrip(t *testing.T) {
	raw := RawRecord{
		"Student Name":   "Asha Verma",
		"Email ID":       "asha@example.com",
		"Mobile":         "9876500000",
		"Sex":            "F",
		"DOB":            "2004-02-11 00:00:00",
		"Caste Category": "gen",
		"PWD":            "N",
		"Annual Income":  "150000",
		"Income Slab":    "Between 0 to 2 Lakh",
		"Discipline":     "CSE",
	}
	rec := Resolve(raw, ProgrammeUG)
	exported := Export(rec, ProgrammeUG)

	require.Len(t, exported, len(FieldsFor(ProgrammeUG)))
	back := CanonicalRecord{}
	for _, fv := range exported {
		back[fv.Key] = fv.Value
	}
	assert.Equal(t, rec, back)
}
