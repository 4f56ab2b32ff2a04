package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/uniadmit/backoffice/models"
)

var (
	// ErrBatchNotFound covers both "nothing matched" and "more than one
	// matched": a tie is never silently broken, since picking one risks
	// seating the student in the wrong cohort.
	ErrBatchNotFound = errors.New("no unique batch")

	// ErrCapacityExceeded is a hard rejection, not a warning.
	ErrCapacityExceeded = errors.New("batch capacity exceeded")
)

// disciplineAliases maps common abbreviations and short names to the
// canonical discipline a batch is filed under. Extending this table is
// data-only: no matching code changes.
var disciplineAliases = map[string]string{
	"cse":              "Computer Science and Engineering",
	"cs":               "Computer Science and Engineering",
	"computer science": "Computer Science and Engineering",
	"ece":              "Electronics and Communication Engineering",
	"electronics":      "Electronics and Communication Engineering",
	"ee":               "Electrical Engineering",
	"eee":              "Electrical Engineering",
	"electrical":       "Electrical Engineering",
	"me":               "Mechanical Engineering",
	"mech":             "Mechanical Engineering",
	"mechanical":       "Mechanical Engineering",
	"ce":               "Civil Engineering",
	"civil":            "Civil Engineering",
	"it":               "Information Technology",
	"chem":             "Chemical Engineering",
	"chemical":         "Chemical Engineering",
	"bt":               "Biotechnology",
	"biotech":          "Biotechnology",
}

// RegisterDisciplineAliases merges extra alias→canonical pairs into the
// curated table. Keys are lowercased; later registrations win.
func RegisterDisciplineAliases(m map[string]string) {
	for k, v := range m {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		disciplineAliases[k] = v
	}
}

// LoadDisciplineAliases reads a flat alias→discipline YAML mapping and
// merges it over the built-in table.
func LoadDisciplineAliases(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias file: %w", err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("parse alias file %s: %w", path, err)
	}
	RegisterDisciplineAliases(m)
	return nil
}

// normBranch is the comparison form used by every matching strategy.
func normBranch(s string) string {
	return strings.ToLower(CleanQualifiedName(s))
}

// Match finds the unique batch eligible for a record's branch within a
// programme-type/year scope. Strategies run in order — exact, curated
// alias, fuzzy substring — and the first one yielding exactly one
// candidate wins. Zero candidates falls through to the next strategy;
// two or more is a tie and reports ErrBatchNotFound immediately.
func Match(branch string, batches []models.Batch, p Programme, year int) (models.Batch, error) {
	want := normBranch(branch)
	if want == "" {
		return models.Batch{}, fmt.Errorf("%w: empty branch", ErrBatchNotFound)
	}

	scope := make([]models.Batch, 0, len(batches))
	for _, b := range batches {
		if strings.EqualFold(b.ProgrammeType, string(p)) && b.AcademicYear == year {
			scope = append(scope, b)
		}
	}
	if len(scope) == 0 {
		return models.Batch{}, fmt.Errorf("%w: no batches for %s %d", ErrBatchNotFound, p, year)
	}

	// (a) exact against code, discipline and display name
	if b, err := unique(scope, func(b models.Batch) bool {
		return want == normBranch(b.Code) || want == normBranch(b.Discipline) || want == normBranch(b.Name)
	}); err == nil {
		return b, nil
	} else if !errors.Is(err, errNoCandidate) {
		return models.Batch{}, err
	}

	// (b) curated alias table → exact against the canonical discipline
	if canon, ok := disciplineAliases[want]; ok {
		target := normBranch(canon)
		if b, err := unique(scope, func(b models.Batch) bool {
			return target == normBranch(b.Discipline) || target == normBranch(b.Code)
		}); err == nil {
			return b, nil
		} else if !errors.Is(err, errNoCandidate) {
			return models.Batch{}, err
		}
	}

	// (c) fuzzy: either side's normalized discipline contains the other
	if b, err := unique(scope, func(b models.Batch) bool {
		d := normBranch(b.Discipline)
		return d != "" && (strings.Contains(d, want) || strings.Contains(want, d))
	}); err == nil {
		return b, nil
	} else if !errors.Is(err, errNoCandidate) {
		return models.Batch{}, err
	}

	return models.Batch{}, fmt.Errorf("%w for branch %q (%s %d)", ErrBatchNotFound, branch, p, year)
}

var errNoCandidate = errors.New("no candidate")

func unique(scope []models.Batch, pred func(models.Batch) bool) (models.Batch, error) {
	var hits []models.Batch
	for _, b := range scope {
		if pred(b) {
			hits = append(hits, b)
		}
	}
	switch len(hits) {
	case 0:
		return models.Batch{}, errNoCandidate
	case 1:
		return hits[0], nil
	default:
		return models.Batch{}, fmt.Errorf("%w: %d batches matched", ErrBatchNotFound, len(hits))
	}
}

// CheckCapacity verifies the batch still has headroom for one more
// student on top of the seats already filled plus any assignments queued
// against the same batch within the current run.
func CheckCapacity(b models.Batch, queued int) error {
	if b.FilledSeats+queued+1 > b.TotalSeats {
		return fmt.Errorf("%w: batch %s has %d/%d seats filled (%d queued)",
			ErrCapacityExceeded, b.Code, b.FilledSeats, b.TotalSeats, queued)
	}
	return nil
}
