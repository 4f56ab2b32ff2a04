package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRecord is a UG record that passes every rule.
func validRecord() CanonicalRecord {
	return CanonicalRecord{
		"name":            "ASHA VERMA",
		"email":           "asha@example.com",
		"phone":           "9876500000",
		"gender":          "Female",
		"dob":             "2004-02-11",
		"nationality":     "INDIAN",
		"category":        "General",
		"categoryRemarks": "",
		"pwd":             "NO",
		"pwdCategory":     "",
		"pwdRemarks":      "",
		"income":          "150000",
		"incomeBracket":   "Between 0 to 2 Lakh",
		"fatherName":      "RAM VERMA",
		"fatherMobile":    "9876500001",
		"motherName":      "SITA VERMA",
		"motherMobile":    "9876500002",
		"address":         "12 MG ROAD, PUNE",
		"branch":          "Computer Science and Engineering",
		"rollNo":          "",
		"tenthPercent":    "91.2",
		"twelfthPercent":  "89.0",
	}
}

func errorKeys(errs []ValidationError) []string {
	keys := make([]string, len(errs))
	for i, e := range errs {
		keys[i] = e.FieldKey
	}
	return keys
}

func TestValidateCleanRecord(t *testing.T) {
	errs := Validate("r1", validRecord(), ProgrammeUG, false)
	assert.Empty(t, errs)
}

func TestValidateRequiredFields(t *testing.T) {
	rec := validRecord()
	rec.Set("name", "")
	rec.Set("email", "")

	errs := Validate("r1", rec, ProgrammeUG, false)
	assert.ElementsMatch(t, []string{"name", "email"}, errorKeys(errs))
	for _, e := range errs {
		assert.Equal(t, "r1", e.RecordRef)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	rec := validRecord()
	rec.Set("name", "")
	rec.Set("gender", "Unknown")
	rec.Set("email", "not-an-email")

	errs := Validate("r1", rec, ProgrammeUG, false)
	assert.ElementsMatch(t, []string{"name", "gender", "email"}, errorKeys(errs))
}

func TestValidateEnumMembership(t *testing.T) {
	rec := validRecord()
	rec.Set("gender", "Unknown")

	errs := Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "gender", errs[0].FieldKey)
	assert.Contains(t, errs[0].Message, "Male, Female, Other", "error names the allowed set")
}

func TestValidatePwdConditional(t *testing.T) {
	rec := validRecord()
	rec.Set("pwd", "YES")
	rec.Set("pwdCategory", "")
	errs := Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "pwdCategory", errs[0].FieldKey)

	rec.Set("pwd", "NO")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))
}

func TestValidateRemarkSentinel(t *testing.T) {
	rec := validRecord()
	rec.Set("category", OptionAnyOther)
	rec.Set("categoryRemarks", "")
	errs := Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "categoryRemarks", errs[0].FieldKey)

	rec.Set("categoryRemarks", "migrated quota")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))
}

func TestValidateIncomeBracket(t *testing.T) {
	rec := validRecord()
	rec.Set("income", "150000")
	rec.Set("incomeBracket", "Between 0 to 2 Lakh")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))

	rec.Set("income", "250000")
	errs := Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "income", errs[0].FieldKey)
	assert.Contains(t, errs[0].Message, "Between 0 to 2 Lakh", "error attributes the offending bracket")

	// boundary: brackets are closed-open
	rec.Set("income", "200000")
	assert.Len(t, Validate("", rec, ProgrammeUG, false), 1)
	rec.Set("incomeBracket", "Between 2 to 5 Lakh")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))

	// open top bracket
	rec.Set("income", "5000000")
	rec.Set("incomeBracket", "Above 12 Lakh")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))

	// grouped-digit input is tolerated
	rec.Set("income", "1,50,000")
	rec.Set("incomeBracket", "Between 0 to 2 Lakh")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))
}

func TestValidatePhoneUniqueness(t *testing.T) {
	rec := validRecord()
	rec.Set("fatherMobile", rec.Get("phone"))
	errs := Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "fatherMobile", errs[0].FieldKey, "error lands on the second-mentioned field")

	rec = validRecord()
	rec.Set("motherMobile", rec.Get("fatherMobile"))
	errs = Validate("", rec, ProgrammeUG, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "motherMobile", errs[0].FieldKey)
}

func TestValidateEmailFormat(t *testing.T) {
	rec := validRecord()
	for _, bad := range []string{"plain", "a@b", "a b@c.com", "@x.com"} {
		rec.Set("email", bad)
		errs := Validate("", rec, ProgrammeUG, false)
		require.Len(t, errs, 1, "email %q", bad)
		assert.Equal(t, "email", errs[0].FieldKey)
	}
	rec.Set("email", "first.last+tag@sub.example.co")
	assert.Empty(t, Validate("", rec, ProgrammeUG, false))
}

func TestValidateEditModeExemptsEnums(t *testing.T) {
	rec := validRecord()
	rec.Set("gender", "")
	rec.Set("category", "")
	rec.Set("pwd", "")

	assert.Empty(t, Validate("", rec, ProgrammeUG, true), "edit mode skips required enums")

	errs := Validate("", rec, ProgrammeUG, false)
	assert.ElementsMatch(t, []string{"gender", "category", "pwd"}, errorKeys(errs))

	// non-enum required fields stay enforced in edit mode
	rec.Set("name", "")
	errs = Validate("", rec, ProgrammeUG, true)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].FieldKey)
}

func TestFieldErrors(t *testing.T) {
	rec := validRecord()
	rec.Set("name", "")
	m := FieldErrors(Validate("", rec, ProgrammeUG, false))
	require.Len(t, m, 1)
	assert.Contains(t, m["name"], "required")

	assert.Nil(t, FieldErrors(nil))
}
