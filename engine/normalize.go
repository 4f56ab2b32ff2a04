package engine

import "strings"

// Normalizers are total: when no rule applies the input comes back
// unchanged, so validation stays the single place that reports problems.

// NormalizeEnum uppercases and trims the input, then resolves it through
// the mapping table ("M"→"Male", "Y"→"YES"). Unknown values fall through
// as the trimmed original.
func NormalizeEnum(value string, mapping map[string]string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if canon, ok := mapping[strings.ToUpper(trimmed)]; ok {
		return canon
	}
	return trimmed
}

// CleanQualifiedName strips a trailing "(...)" qualifier and surrounding
// whitespace. Discipline names often arrive like
// "Computer Science and Engineering (Self Financed)".
func CleanQualifiedName(value string) string {
	v := strings.TrimSpace(value)
	if i := strings.Index(v, "("); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

// NormalizeDate keeps the date-only prefix of a timestamp-like string:
// "2006-01-02 15:04:05" and "2006-01-02T15:04:05Z" both become
// "2006-01-02". Unparseable input passes through verbatim.
func NormalizeDate(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	v = strings.SplitN(v, " ", 2)[0]
	v = strings.SplitN(v, "T", 2)[0]
	return v
}

// applyCase applies a FieldSpec case rule (upper for proper-noun fields,
// lower for emails) so later uniqueness comparisons are case-insensitive.
func applyCase(value, rule string) string {
	switch rule {
	case CaseUpper:
		return strings.ToUpper(value)
	case CaseLower:
		return strings.ToLower(value)
	default:
		return value
	}
}
