// Package norms holds the static percentile-to-RIT reference tables and
// the inverse lookup that turns a score back into a percentile rank.
//
// Each table is the vendor's published column for one (subject, season,
// grade): 99 RIT thresholds, index 0 = percentile 1 through index 98 =
// percentile 99. The inversion is a nearest-neighbor search, accurate
// to within one percentile of the forward table; callers must not
// expect an exact round trip.
package norms

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/classlens/growthreport/internal/term"
)

//go:embed tables.json
var embeddedTables []byte

// Table maps "SUBJECT_SEASON_GRADE" keys (e.g. "MA_FA_5") to 99
// ascending RIT thresholds. It is immutable after load; share one value
// across the process and pass it by reference.
type Table map[string][]float64

// Load decodes the embedded reference tables.
func Load() (Table, error) {
	return decode(embeddedTables)
}

// LoadFile reads tables from an external JSON file, for districts that
// license a newer norms study than the embedded one.
func LoadFile(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("norms: %w", err)
	}
	return decode(b)
}

func decode(b []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("norms: decode tables: %w", err)
	}
	for k, row := range t {
		if len(row) != 99 {
			return nil, fmt.Errorf("norms: table %s has %d entries, want 99", k, len(row))
		}
	}
	return t, nil
}

// subjectCodes translates export subject names (including the
// course-level variants the vendor emits) to table subject codes.
// An unmapped subject is a lookup miss, not an error.
var subjectCodes = map[string]string{
	"mathematics":     "MA",
	"math k-12":       "MA",
	"math k-":         "MA",
	"math 6+":         "MA",
	"reading":         "RD",
	"language usage":  "LU",
	"language arts":   "LU",
	"science":         "SC",
	"science k-12":    "SC",
	"science k-":      "SC",
	"general science": "SC",
}

// SubjectCode maps an export subject name to its table code; ok is
// false for subjects with no norms coverage.
func SubjectCode(subject string) (string, bool) {
	c, ok := subjectCodes[strings.ToLower(strings.TrimSpace(subject))]
	return c, ok
}

func gradeCode(grade string) (string, bool) {
	g := strings.ToUpper(strings.TrimSpace(grade))
	if g == "" || g == "PK" {
		return "", false
	}
	return g, true
}

// LookupPercentile inverts a RIT score to a percentile rank 1..99 for
// the given subject, season and grade. ok is false when the subject or
// season has no code mapping or no table exists for the key.
//
// Scores at or below the first threshold clamp to 1 and at or beyond
// the last clamp to 99. In between, the rank of the highest threshold
// not exceeding the rounded score wins, nudged up one step when the
// next threshold is at least as close (ties round toward the higher
// percentile).
func (t Table) LookupPercentile(subject string, season term.Season, grade string, rit float64) (int, bool) {
	sc, ok := SubjectCode(subject)
	if !ok {
		return 0, false
	}
	se := season.Code()
	if se == "" {
		return 0, false
	}
	gc, ok := gradeCode(grade)
	if !ok {
		return 0, false
	}
	row, ok := t[sc+"_"+se+"_"+gc]
	if !ok {
		return 0, false
	}

	r := math.Round(rit)
	if r <= row[0] {
		return 1, true
	}
	if r >= row[98] {
		return 99, true
	}

	// Highest i with row[i] <= r.
	i := sort.Search(99, func(i int) bool { return row[i] > r }) - 1
	if row[i] < r && i+1 < 99 {
		if row[i+1]-r <= r-row[i] {
			i++
		}
	}
	return i + 1, true
}
