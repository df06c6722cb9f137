// Package slicer turns a raw roster export into the report artifacts:
// per-term deduplication, per-school slices, and the hierarchical
// index that drives the cascading selectors.
package slicer

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/classlens/growthreport/internal/roster"
	"github.com/classlens/growthreport/internal/slicestore"
	"github.com/classlens/growthreport/internal/term"
)

// Stats summarizes one build for operator logging.
type Stats struct {
	Rows      int // data rows read from the export
	Canonical int // records surviving deduplication
	Slices    int // (term, district, school) artifacts written
}

// Build reads a flat roster CSV, dedupes each reporting term, and
// writes one slice per (term, district, school) plus the index.
func Build(ctx context.Context, r io.Reader, w slicestore.Writer) (*Stats, error) {
	records, err := roster.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("slicer: %w", err)
	}
	stats := &Stats{Rows: len(records)}

	canonical := roster.DedupeByTerm(records)
	stats.Canonical = len(canonical)

	type key struct{ term, district, school string }
	groups := map[key][]roster.Record{}
	var order []key
	for _, rec := range canonical {
		k := key{rec.TermName, rec.DistrictName, rec.SchoolName}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], rec)
	}

	idx := slicestore.Index{}
	for _, k := range order {
		recs := groups[k]
		if err := w.PutSlice(ctx, k.term, k.district, k.school, recs); err != nil {
			return nil, fmt.Errorf("slicer: write slice %s/%s/%s: %w", k.term, k.district, k.school, err)
		}
		stats.Slices++

		if idx[k.term] == nil {
			idx[k.term] = map[string]map[string]slicestore.SchoolSummary{}
		}
		if idx[k.term][k.district] == nil {
			idx[k.term][k.district] = map[string]slicestore.SchoolSummary{}
		}
		idx[k.term][k.district][k.school] = summarize(recs)
	}

	if err := w.PutIndex(ctx, idx); err != nil {
		return nil, fmt.Errorf("slicer: write index: %w", err)
	}
	return stats, nil
}

func summarize(recs []roster.Record) slicestore.SchoolSummary {
	grades := map[string]bool{}
	subjects := map[string]bool{}
	genders := map[string]bool{}
	ethnicities := map[string]bool{}
	periods := map[string]bool{}

	for _, r := range recs {
		if r.Grade != "" {
			grades[r.Grade] = true
		}
		if r.Subject != "" {
			subjects[r.Subject] = true
		}
		if r.Gender != "" {
			genders[r.Gender] = true
		}
		if r.EthnicGroup != "" {
			ethnicities[r.EthnicGroup] = true
		}
		for p := range r.Growth {
			periods[string(p)] = true
		}
	}

	return slicestore.SchoolSummary{
		Count:         len(recs),
		Grades:        sortedKeys(grades),
		Subjects:      sortedKeys(subjects),
		Genders:       sortedKeys(genders),
		Ethnicities:   sortedKeys(ethnicities),
		GrowthPeriods: orderedPeriods(periods),
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// orderedPeriods keeps the vendor's display order rather than sorting
// alphabetically.
func orderedPeriods(present map[string]bool) []string {
	var out []string
	for _, p := range term.Periods() {
		if present[string(p)] {
			out = append(out, string(p))
		}
	}
	return out
}
