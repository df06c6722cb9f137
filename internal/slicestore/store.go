// Package slicestore reads and writes the precomputed report
// artifacts: a hierarchical index plus one deduplicated record slice
// per (term, district, school). Artifacts are produced once by the
// slicer and are read-only at query time.
package slicestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/classlens/growthreport/internal/roster"
)

// SchoolSummary is one leaf of the index: what a school's slice holds,
// enough to drive the cascading selectors without loading the slice.
type SchoolSummary struct {
	Count         int      `json:"count"`
	Grades        []string `json:"grades"`
	Subjects      []string `json:"subjects"`
	Genders       []string `json:"genders"`
	Ethnicities   []string `json:"ethnicities"`
	GrowthPeriods []string `json:"growthPeriods"`
}

// Index is the artifact catalog: term → district → school → summary.
type Index map[string]map[string]map[string]SchoolSummary

// Reader is the query-time view of the artifacts.
type Reader interface {
	Index(ctx context.Context) (Index, error)
	Slice(ctx context.Context, term, district, school string) ([]roster.Record, error)
}

// Writer is the build-time view used by the slicer.
type Writer interface {
	PutIndex(ctx context.Context, idx Index) error
	PutSlice(ctx context.Context, term, district, school string, records []roster.Record) error
	Close() error
}

type Driver string

const (
	DriverFS     Driver = "fs"
	DriverSQLite Driver = "sqlite"
)

// Open returns a reader for the configured artifact backend.
func Open(ctx context.Context, driver Driver, dsn string) (Reader, error) {
	switch driver {
	case DriverFS:
		return NewFSStore(dsn)
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("slicestore: unsupported driver: %s", driver)
	}
}

// OpenWriter returns a writer for the configured artifact backend.
func OpenWriter(ctx context.Context, driver Driver, dsn string) (Writer, error) {
	switch driver {
	case DriverFS:
		return NewFSStore(dsn)
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("slicestore: unsupported driver: %s", driver)
	}
}

// Sanitize lower-cases a name and replaces every byte outside
// [a-z0-9_-] with an underscore. Slice filenames and keys are built
// from sanitized parts, so producer and consumer must share this rule
// exactly.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SliceKey is the canonical artifact key for one (term, district,
// school) triple.
func SliceKey(term, district, school string) string {
	return Sanitize(term) + "__" + Sanitize(district) + "__" + Sanitize(school)
}
