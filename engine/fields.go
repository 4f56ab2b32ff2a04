package engine

import "strings"

// Programme levels supported by admissions.
type Programme string

const (
	ProgrammeUG  Programme = "ug"
	ProgrammePG  Programme = "pg"
	ProgrammePHD Programme = "phd"
)

// ParseProgramme accepts the short codes plus a few common long forms.
func ParseProgramme(s string) (Programme, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ug", "undergraduate":
		return ProgrammeUG, true
	case "pg", "postgraduate":
		return ProgrammePG, true
	case "phd", "ph.d", "ph.d.", "doctoral":
		return ProgrammePHD, true
	default:
		return "", false
	}
}

type FieldDomain string

const (
	DomainText   FieldDomain = "text"
	DomainEnum   FieldDomain = "enum"
	DomainNumber FieldDomain = "number"
	DomainDate   FieldDomain = "date"
	DomainEmail  FieldDomain = "email"
)

// Case rules applied after resolution so downstream comparisons are
// case-insensitive.
const (
	CaseNone  = ""
	CaseUpper = "upper"
	CaseLower = "lower"
)

// Sentinel enum option that makes the paired remarks field mandatory.
const OptionAnyOther = "Any other (remarks)"

// CanonicalRecord holds one normalized value per FieldSpec key.
// Empty string = unresolved; validation, not resolution, reports gaps.
type CanonicalRecord map[string]string

func (r CanonicalRecord) Get(key string) string { return strings.TrimSpace(r[key]) }

func (r CanonicalRecord) Set(key, value string) { r[key] = value }

// FieldSpec describes one student attribute: how it arrives, how it is
// normalized, and when it is required. The full set is the registry —
// adding a spec with aliases is enough to make a new column recognized.
type FieldSpec struct {
	Key        string
	Label      string
	BackendKey string
	Required   bool
	Domain     FieldDomain
	Options    []string          // enum domain only
	EnumMap    map[string]string // raw spelling → canonical option
	Aliases    []string          // alternate column names, most specific first
	CaseRule   string
	Clean      bool // strip "(...)" qualifiers, for discipline-like names
	// RequiredWhen overrides Required for conditionally mandatory fields
	// (e.g. pwd category only when pwd = YES).
	RequiredWhen func(CanonicalRecord) bool
	// RemarkOf names the governing enum key; the field becomes required
	// exactly when that field equals OptionAnyOther.
	RemarkOf   string
	Programmes []Programme // empty = applies to every programme
}

func (f FieldSpec) AppliesTo(p Programme) bool {
	if len(f.Programmes) == 0 {
		return true
	}
	for _, sp := range f.Programmes {
		if sp == p {
			return true
		}
	}
	return false
}

var genderMap = map[string]string{
	"M":              "Male",
	"MALE":           "Male",
	"F":              "Female",
	"FEMALE":         "Female",
	"O":              "Other",
	"OTHER":          "Other",
	"GENDER-NEUTRAL": "Other",
	"GENDER NEUTRAL": "Other",
}

var yesNoMap = map[string]string{
	"Y":   "YES",
	"YES": "YES",
	"N":   "NO",
	"NO":  "NO",
}

var categoryMap = map[string]string{
	"GEN":       "General",
	"GENERAL":   "General",
	"UR":        "General",
	"OBC":       "OBC",
	"OBC-NCL":   "OBC",
	"SC":        "SC",
	"ST":        "ST",
	"EWS":       "EWS",
	"ANY OTHER": OptionAnyOther,
	"OTHER":     OptionAnyOther,
}

// registry is the full field catalog. Ordered: export/report layouts
// follow this order.
var registry = []FieldSpec{
	{
		Key: "name", Label: "Full Name", BackendKey: "student_name",
		Required: true, Domain: DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Name of Student", "Student Name", "Candidate Name", "Full Name"},
	},
	{
		Key: "email", Label: "Email", BackendKey: "email_id",
		Required: true, Domain: DomainEmail, CaseRule: CaseLower,
		Aliases: []string{"Email ID", "E-mail", "Mail ID", "Email Address"},
	},
	{
		Key: "phone", Label: "Phone Number", BackendKey: "mobile_no",
		Required: true, Domain: DomainText,
		Aliases: []string{"Mobile", "Mobile No", "Mobile Number", "Contact No", "Phone No"},
	},
	{
		Key: "gender", Label: "Gender", BackendKey: "gender",
		Required: true, Domain: DomainEnum,
		Options: []string{"Male", "Female", "Other"},
		EnumMap: genderMap,
		Aliases: []string{"Sex"},
	},
	{
		Key: "dob", Label: "Date of Birth", BackendKey: "date_of_birth",
		Required: true, Domain: DomainDate,
		Aliases: []string{"DOB", "Birth Date", "D.O.B"},
	},
	{
		Key: "nationality", Label: "Nationality", BackendKey: "nationality",
		Domain: DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Country", "Citizenship"},
	},
	{
		Key: "category", Label: "Category", BackendKey: "category",
		Required: true, Domain: DomainEnum,
		Options: []string{"General", "OBC", "SC", "ST", "EWS", OptionAnyOther},
		EnumMap: categoryMap,
		Aliases: []string{"Caste Category", "Admission Category", "Cat"},
	},
	{
		Key: "categoryRemarks", Label: "Category Remarks", BackendKey: "category_remarks",
		Domain: DomainText, RemarkOf: "category",
		Aliases: []string{"Category Remark", "Remarks (Category)"},
	},
	{
		Key: "pwd", Label: "PwD", BackendKey: "pwd_status",
		Required: true, Domain: DomainEnum,
		Options: []string{"YES", "NO"},
		EnumMap: yesNoMap,
		Aliases: []string{"PWD", "Person with Disability", "Divyang", "PH"},
	},
	{
		Key: "pwdCategory", Label: "PwD Category", BackendKey: "pwd_category",
		Domain:  DomainEnum,
		Options: []string{"Blindness", "Low Vision", "Hearing Impairment", "Locomotor Disability", OptionAnyOther},
		Aliases: []string{"Disability Category", "PWD Category", "Type of Disability"},
		RequiredWhen: func(r CanonicalRecord) bool {
			return r.Get("pwd") == "YES"
		},
	},
	{
		Key: "pwdRemarks", Label: "PwD Remarks", BackendKey: "pwd_remarks",
		Domain: DomainText, RemarkOf: "pwdCategory",
		Aliases: []string{"Disability Remarks"},
	},
	{
		Key: "income", Label: "Family Income", BackendKey: "family_income",
		Required: true, Domain: DomainNumber,
		Aliases: []string{"Annual Income", "Family Annual Income", "Income"},
	},
	{
		Key: "incomeBracket", Label: "Income Bracket", BackendKey: "income_bracket",
		Required: true, Domain: DomainEnum,
		Options: incomeBracketLabels(),
		Aliases: []string{"Income Category", "Income Range", "Income Slab"},
	},
	{
		Key: "fatherName", Label: "Father's Name", BackendKey: "father_name",
		Required: true, Domain: DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Fathers Name", "Name of Father"},
	},
	{
		Key: "fatherMobile", Label: "Father's Mobile", BackendKey: "father_mobile",
		Domain:  DomainText,
		Aliases: []string{"Fathers Mobile", "Father Mobile No", "Father Contact"},
	},
	{
		Key: "motherName", Label: "Mother's Name", BackendKey: "mother_name",
		Required: true, Domain: DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Mothers Name", "Name of Mother"},
	},
	{
		Key: "motherMobile", Label: "Mother's Mobile", BackendKey: "mother_mobile",
		Domain:  DomainText,
		Aliases: []string{"Mothers Mobile", "Mother Mobile No", "Mother Contact"},
	},
	{
		Key: "address", Label: "Address", BackendKey: "permanent_address",
		Required: true, Domain: DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Permanent Address", "Home Address", "Correspondence Address"},
	},
	{
		Key: "branch", Label: "Branch", BackendKey: "branch",
		Required: true, Domain: DomainText, Clean: true,
		Aliases: []string{"Discipline", "Department", "Programme", "Course", "Specialization"},
	},
	{
		Key: "rollNo", Label: "Roll Number", BackendKey: "roll_no",
		Domain:  DomainText, CaseRule: CaseUpper,
		Aliases: []string{"Roll No", "Application No", "Registration No", "Enrollment No"},
	},
	{
		Key: "tenthPercent", Label: "10th Percentage", BackendKey: "tenth_percent",
		Domain: DomainNumber, Programmes: []Programme{ProgrammeUG},
		Aliases: []string{"10th %", "Class X Percentage", "SSC Percentage"},
	},
	{
		Key: "twelfthPercent", Label: "12th Percentage", BackendKey: "twelfth_percent",
		Domain: DomainNumber, Programmes: []Programme{ProgrammeUG},
		Aliases: []string{"12th %", "Class XII Percentage", "HSC Percentage"},
	},
	{
		Key: "gateScore", Label: "GATE Score", BackendKey: "gate_score",
		Domain: DomainNumber, Programmes: []Programme{ProgrammePG, ProgrammePHD},
		Aliases: []string{"GATE", "Gate Marks"},
	},
	{
		Key: "researchArea", Label: "Research Area", BackendKey: "research_area",
		Domain: DomainText, Programmes: []Programme{ProgrammePHD},
		Aliases: []string{"Area of Research", "Research Topic"},
	},
}

// Fields returns the full registry in declaration order.
func Fields() []FieldSpec { return registry }

// FieldsFor filters the registry to the specs that apply to a programme.
func FieldsFor(p Programme) []FieldSpec {
	out := make([]FieldSpec, 0, len(registry))
	for _, f := range registry {
		if f.AppliesTo(p) {
			out = append(out, f)
		}
	}
	return out
}

// FieldByKey looks a spec up by canonical key.
func FieldByKey(key string) (FieldSpec, bool) {
	for _, f := range registry {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldValue is one exported cell: canonical key plus its value.
type FieldValue struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Export lays a record out in registry order, one entry per in-scope
// spec. No field is dropped: unresolved fields export as empty values.
func Export(rec CanonicalRecord, p Programme) []FieldValue {
	specs := FieldsFor(p)
	out := make([]FieldValue, 0, len(specs))
	for _, f := range specs {
		out = append(out, FieldValue{Key: f.Key, Label: f.Label, Value: rec.Get(f.Key)})
	}
	return out
}
