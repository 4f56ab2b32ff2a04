package engine

import (
	"strconv"
	"strings"
	"unicode"
)

// RawRecord is a row exactly as the upload or form collaborator hands it
// over: string keys, values of whatever JSON/spreadsheet type survived
// parsing. No invariants; it lives only through resolution.
type RawRecord map[string]any

// stringify mirrors the loose payload reading used across the handlers:
// strings, numbers and bools all collapse to their trimmed string form.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// lookup tries an exact key first, then a case-insensitive scan.
// Only a non-empty value counts as a hit.
func (r RawRecord) lookup(key string) (string, bool) {
	if v, ok := r[key]; ok {
		if s := stringify(v); s != "" {
			return s, true
		}
	}
	return "", false
}

func (r RawRecord) lookupFold(key string) (string, bool) {
	for k, v := range r {
		if strings.EqualFold(k, key) {
			if s := stringify(v); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// splitCamel breaks a canonical camelCase key into lowercase words:
// "fatherMobile" → ["father", "mobile"].
func splitCamel(key string) []string {
	var words []string
	var cur strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) && cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
		cur.WriteRune(unicode.ToLower(r))
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// keyVariants derives mechanical alternative spellings of a canonical
// key: snake_case, Title Case and plain space-separated. These are the
// last-resort guesses after the declared aliases are exhausted.
func keyVariants(key string) []string {
	words := splitCamel(key)
	if len(words) == 0 {
		return nil
	}
	titled := make([]string, len(words))
	for i, w := range words {
		titled[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return []string{
		strings.Join(words, "_"),
		strings.Join(titled, " "),
		strings.Join(words, " "),
	}
}

// resolveField walks the lookup chain for one spec. Declared order
// encodes precedence: the most specific naming wins.
func resolveField(raw RawRecord, f FieldSpec) string {
	if v, ok := raw.lookup(f.Key); ok {
		return v
	}
	if f.BackendKey != "" {
		if v, ok := raw.lookup(f.BackendKey); ok {
			return v
		}
	}
	for _, alias := range f.Aliases {
		if v, ok := raw.lookup(alias); ok {
			return v
		}
		if v, ok := raw.lookupFold(alias); ok {
			return v
		}
	}
	for _, variant := range keyVariants(f.Key) {
		if v, ok := raw.lookupFold(variant); ok {
			return v
		}
	}
	return ""
}

// Resolve maps one raw row onto the canonical field model. It never
// fails: fields found under no spelling stay empty and surface later as
// validation findings.
func Resolve(raw RawRecord, p Programme) CanonicalRecord {
	rec := CanonicalRecord{}
	for _, f := range FieldsFor(p) {
		v := resolveField(raw, f)
		if v == "" {
			rec[f.Key] = ""
			continue
		}
		switch f.Domain {
		case DomainEnum:
			v = NormalizeEnum(v, f.EnumMap)
		case DomainDate:
			v = NormalizeDate(v)
		}
		if f.Clean {
			v = CleanQualifiedName(v)
		}
		rec[f.Key] = applyCase(v, f.CaseRule)
	}
	return rec
}
