package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError is one field-level finding. RecordRef lets the caller
// point back at the offending row without knowing engine internals.
type ValidationError struct {
	RecordRef string `json:"record_ref,omitempty"`
	FieldKey  string `json:"field"`
	Message   string `json:"message"`
}

// FieldErrors flattens findings into the {"field": "message"} shape the
// handlers return under VALIDATION_ERROR. First finding per field wins.
func FieldErrors(errs []ValidationError) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.FieldKey]; !ok {
			out[e.FieldKey] = e.Message
		}
	}
	return out
}

// Five fixed closed-open income brackets, [Min, Max). Max < 0 = open top.
type incomeBracket struct {
	Label string
	Min   float64
	Max   float64
}

var incomeBrackets = []incomeBracket{
	{Label: "Between 0 to 2 Lakh", Min: 0, Max: 200000},
	{Label: "Between 2 to 5 Lakh", Min: 200000, Max: 500000},
	{Label: "Between 5 to 8 Lakh", Min: 500000, Max: 800000},
	{Label: "Between 8 to 12 Lakh", Min: 800000, Max: 1200000},
	{Label: "Above 12 Lakh", Min: 1200000, Max: -1},
}

func incomeBracketLabels() []string {
	out := make([]string, len(incomeBrackets))
	for i, b := range incomeBrackets {
		out[i] = b.Label
	}
	return out
}

func bracketByLabel(label string) (incomeBracket, bool) {
	for _, b := range incomeBrackets {
		if strings.EqualFold(b.Label, label) {
			return b, true
		}
	}
	return incomeBracket{}, false
}

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// parseAmount reads a money-like value, tolerating commas and currency
// spacing ("2,50,000" → 250000).
func parseAmount(v string) (float64, bool) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	v = strings.TrimSpace(strings.TrimPrefix(v, "Rs."))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func fieldRequired(f FieldSpec, rec CanonicalRecord) bool {
	if f.RequiredWhen != nil {
		return f.RequiredWhen(rec)
	}
	return f.Required
}

// Validate runs the full rule set over a canonical record and collects
// every violation; nothing short-circuits. In edit mode, enum-domain
// fields are exempt from the required check: identity-defining enums on
// an existing record are assumed already satisfied, and re-enforcing
// them would block legitimate partial updates.
func Validate(ref string, rec CanonicalRecord, p Programme, editMode bool) []ValidationError {
	var errs []ValidationError
	add := func(key, msg string) {
		errs = append(errs, ValidationError{RecordRef: ref, FieldKey: key, Message: msg})
	}
	specs := FieldsFor(p)

	// 1) required fields, honoring conditional predicates
	for _, f := range specs {
		if f.RemarkOf != "" {
			continue // remark fields are rule 3's business
		}
		if editMode && f.Domain == DomainEnum {
			continue
		}
		if fieldRequired(f, rec) && rec.Get(f.Key) == "" {
			add(f.Key, fmt.Sprintf("%s is required", f.Label))
		}
	}

	// 2) enum membership
	for _, f := range specs {
		if f.Domain != DomainEnum {
			continue
		}
		v := rec.Get(f.Key)
		if v == "" {
			continue
		}
		if !containsFold(f.Options, v) {
			add(f.Key, fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", ")))
		}
	}

	// 3) remark fields required by their governing sentinel option
	for _, f := range specs {
		if f.RemarkOf == "" {
			continue
		}
		if rec.Get(f.RemarkOf) == OptionAnyOther && rec.Get(f.Key) == "" {
			add(f.Key, fmt.Sprintf("%s is required when %s is %q", f.Label, f.RemarkOf, OptionAnyOther))
		}
	}

	// 4) income must sit inside the declared bracket
	if income, bracket := rec.Get("income"), rec.Get("incomeBracket"); income != "" && bracket != "" {
		n, ok := parseAmount(income)
		if !ok {
			add("income", "Family Income must be a number")
		} else if b, found := bracketByLabel(bracket); found {
			if n < b.Min || (b.Max >= 0 && n >= b.Max) {
				add("income", fmt.Sprintf("income %s does not fall in bracket %q", income, b.Label))
			}
		}
	}

	// 5) student/father/mother numbers must be pairwise distinct;
	// the error lands on the second-mentioned field of the pair.
	pairs := [][2]string{
		{"phone", "fatherMobile"},
		{"phone", "motherMobile"},
		{"fatherMobile", "motherMobile"},
	}
	for _, pair := range pairs {
		a, b := rec.Get(pair[0]), rec.Get(pair[1])
		if a != "" && a == b {
			add(pair[1], fmt.Sprintf("%s must differ from %s", pair[1], pair[0]))
		}
	}

	// 6) email shape
	for _, f := range specs {
		if f.Domain != DomainEmail {
			continue
		}
		if v := rec.Get(f.Key); v != "" && !reEmail.MatchString(v) {
			add(f.Key, fmt.Sprintf("%s must be a valid email address", f.Label))
		}
	}

	return errs
}

func containsFold(opts []string, v string) bool {
	for _, o := range opts {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}
