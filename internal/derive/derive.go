// Package derive computes the displayed growth fields for one student
// record under a selected growth-comparison window. Every function here
// is total: missing inputs degrade to nil fields, never to errors and
// never to zeroes.
package derive

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/classlens/growthreport/internal/norms"
	"github.com/classlens/growthreport/internal/roster"
	"github.com/classlens/growthreport/internal/term"
)

// PriorLookup maps roster.Record.Key() to the canonical record of the
// window's start term. It is built once per report generation and
// injected read-only; the engine itself does no I/O.
type PriorLookup map[string]roster.Record

// Derived is a roster record plus everything the table and chart
// display for one growth window. Instances are rebuilt from scratch on
// every window or filter change and never mutated in place.
type Derived struct {
	roster.Record

	Period        term.Period `json:"period"`
	HasGrowthData bool        `json:"hasGrowthData"`

	StartTermScore *float64 `json:"startTermScore,omitempty"`
	ProjectedScore *float64 `json:"projectedScore,omitempty"`

	// GrowthIndex is observed minus projected growth. It is not the
	// vendor's conditional growth index, which is carried verbatim in
	// ConditionalGrowthIndex; the two must never share a display field.
	GrowthIndex *float64 `json:"growthIndex,omitempty"`

	// End-term RIT range at plus/minus one standard error. The vendor's
	// published reports use one SE, not the two a 95% interval would
	// take. Unrounded values feed downstream math; the display fields
	// are rounded.
	EndRITLow         *float64 `json:"-"`
	EndRITHigh        *float64 `json:"-"`
	EndRITLowDisplay  *int     `json:"endRITLow,omitempty"`
	EndRITHighDisplay *int     `json:"endRITHigh,omitempty"`

	StartTermPercentile     *int `json:"startTermPercentile,omitempty"`
	StartTermPercentileLow  *int `json:"startTermPercentileLow,omitempty"`
	StartTermPercentileHigh *int `json:"startTermPercentileHigh,omitempty"`

	EndTermPercentile     *int `json:"endTermPercentile,omitempty"`
	EndTermPercentileLow  *int `json:"endTermPercentileLow,omitempty"`
	EndTermPercentileHigh *int `json:"endTermPercentileHigh,omitempty"`

	ObservedGrowth              *float64 `json:"observedGrowth,omitempty"`
	ProjectedGrowth             *float64 `json:"projectedGrowth,omitempty"`
	ObservedGrowthSE            *float64 `json:"observedGrowthSE,omitempty"`
	MetProjectedGrowth          string   `json:"metProjectedGrowth,omitempty"`
	ConditionalGrowthIndex      *float64 `json:"conditionalGrowthIndex,omitempty"`
	ConditionalGrowthPercentile *float64 `json:"conditionalGrowthPercentile,omitempty"`
	GrowthQuintile              string   `json:"growthQuintile,omitempty"`

	StudentName      string `json:"studentName"`
	StudentNameShort string `json:"studentNameShort"`
}

// Engine derives display fields against an immutable norms table.
type Engine struct {
	norms norms.Table
}

func NewEngine(tbl norms.Table) *Engine {
	return &Engine{norms: tbl}
}

// Derive computes all displayed fields for rec under window p.
//
// prior may be nil when no start-term slice could be loaded; labels may
// be the zero set when the term name did not resolve. Both degrade the
// affected fields to "no data" rather than failing.
func (e *Engine) Derive(rec roster.Record, p term.Period, prior PriorLookup, labels term.LabelSet) Derived {
	g := rec.GrowthFor(p)

	d := Derived{
		Record: rec,
		Period: p,

		ObservedGrowth:              g.ObservedGrowth,
		ProjectedGrowth:             g.ProjectedGrowth,
		ObservedGrowthSE:            g.ObservedGrowthSE,
		MetProjectedGrowth:          g.MetProjectedGrowth,
		ConditionalGrowthIndex:      g.ConditionalGrowthIndex,
		ConditionalGrowthPercentile: g.ConditionalGrowthPercentile,
		GrowthQuintile:              g.GrowthQuintile,

		StudentName:      fmt.Sprintf("%s, %s", rec.LastName, rec.FirstName),
		StudentNameShort: shortName(rec.LastName, rec.FirstName),
	}

	d.HasGrowthData = g.ObservedGrowth != nil || g.ProjectedGrowth != nil

	// Start-term score reconstructed from the end score and observed
	// growth. Without growth data it stays nil; it must never default
	// to the end-term score.
	if d.HasGrowthData && rec.RITScore != nil && g.ObservedGrowth != nil {
		d.StartTermScore = ptr(*rec.RITScore - *g.ObservedGrowth)
	}
	if d.HasGrowthData && d.StartTermScore != nil && g.ProjectedGrowth != nil {
		d.ProjectedScore = ptr(*d.StartTermScore + *g.ProjectedGrowth)
	}
	if g.ObservedGrowth != nil && g.ProjectedGrowth != nil {
		d.GrowthIndex = ptr(*g.ObservedGrowth - *g.ProjectedGrowth)
	}

	e.deriveEndRange(&d, rec, labels)
	e.deriveStartPercentile(&d, rec, p, prior, labels)

	return d
}

// DeriveAll derives every record under the same window and lookups.
func (e *Engine) DeriveAll(recs []roster.Record, p term.Period, prior PriorLookup, labels term.LabelSet) []Derived {
	out := make([]Derived, 0, len(recs))
	for _, r := range recs {
		out = append(out, e.Derive(r, p, prior, labels))
	}
	return out
}

func (e *Engine) deriveEndRange(d *Derived, rec roster.Record, labels term.LabelSet) {
	if rec.Percentile != nil {
		d.EndTermPercentile = ptrInt(roundInt(*rec.Percentile))
	}
	if rec.RITScore == nil {
		return
	}

	se := 0.0
	if rec.StandardError != nil {
		se = *rec.StandardError
	}
	low, high := *rec.RITScore-se, *rec.RITScore+se
	d.EndRITLow, d.EndRITHigh = ptr(low), ptr(high)
	d.EndRITLowDisplay = ptrInt(roundInt(low))
	d.EndRITHighDisplay = ptrInt(roundInt(high))

	// Percentile bounds from the norms table when one covers this key;
	// otherwise the vendor's flat plus/minus two estimate.
	if labels.EndSeason != "" {
		pl, okL := e.norms.LookupPercentile(rec.Subject, labels.EndSeason, rec.Grade, low)
		ph, okH := e.norms.LookupPercentile(rec.Subject, labels.EndSeason, rec.Grade, high)
		if okL && okH {
			d.EndTermPercentileLow = ptrInt(pl)
			d.EndTermPercentileHigh = ptrInt(ph)
			return
		}
	}
	if d.EndTermPercentile != nil {
		d.EndTermPercentileLow = ptrInt(clampPercentile(*d.EndTermPercentile - 2))
		d.EndTermPercentileHigh = ptrInt(clampPercentile(*d.EndTermPercentile + 2))
	}
}

func (e *Engine) deriveStartPercentile(d *Derived, rec roster.Record, p term.Period, prior PriorLookup, labels term.LabelSet) {
	priorRec, havePrior := roster.Record{}, false
	if prior != nil {
		priorRec, havePrior = prior[rec.Key()]
	}

	if p.SameSchoolYear() {
		// The start test was scored under the norms in effect at test
		// time, so its stored percentile is taken as-is.
		if havePrior && priorRec.Percentile != nil {
			sp := roundInt(*priorRec.Percentile)
			d.StartTermPercentile = ptrInt(sp)
			d.StartTermPercentileLow = ptrInt(clampPercentile(sp - 2))
			d.StartTermPercentileHigh = ptrInt(clampPercentile(sp + 2))
		}
		return
	}

	// Year-over-year: the stored percentile was scored at a different
	// grade under a prior study, so re-rank the reconstructed start
	// score against the start grade's table.
	if d.StartTermScore != nil && labels.StartSeason != "" {
		startGrade := PrevGrade(rec.Grade)
		if sp, ok := e.norms.LookupPercentile(rec.Subject, labels.StartSeason, startGrade, *d.StartTermScore); ok {
			d.StartTermPercentile = ptrInt(sp)

			se := 0.0
			if havePrior && priorRec.StandardError != nil {
				se = *priorRec.StandardError
			}
			if pl, ok := e.norms.LookupPercentile(rec.Subject, labels.StartSeason, startGrade, *d.StartTermScore-se); ok {
				d.StartTermPercentileLow = ptrInt(pl)
			}
			if ph, ok := e.norms.LookupPercentile(rec.Subject, labels.StartSeason, startGrade, *d.StartTermScore+se); ok {
				d.StartTermPercentileHigh = ptrInt(ph)
			}
			return
		}
	}

	// No table covers the key: the stale prior percentile beats nothing.
	if havePrior && priorRec.Percentile != nil {
		sp := roundInt(*priorRec.Percentile)
		d.StartTermPercentile = ptrInt(sp)
		d.StartTermPercentileLow = ptrInt(clampPercentile(sp - 2))
		d.StartTermPercentileHigh = ptrInt(clampPercentile(sp + 2))
	}
}

// ChartEligible filters to the records the quadrant chart may plot:
// both an end-term percentile and a conditional growth percentile must
// be present. A student without a start baseline is not plotted; this
// is the vendor's charting rule, not a UI nicety.
func ChartEligible(records []Derived) []Derived {
	out := make([]Derived, 0, len(records))
	for _, d := range records {
		if d.EndTermPercentile != nil && d.ConditionalGrowthPercentile != nil {
			out = append(out, d)
		}
	}
	return out
}

// PrevGrade steps a grade label down one year for start-term norms
// lookups. "1" steps to "K"; "K", "PK" and non-numeric labels have no
// lower grade and come back unchanged.
func PrevGrade(grade string) string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	n, err := strconv.Atoi(g)
	if err != nil {
		return grade
	}
	if n <= 1 {
		if n == 1 {
			return "K"
		}
		return grade
	}
	return strconv.Itoa(n - 1)
}

func shortName(last, first string) string {
	initial := ""
	if first != "" {
		initial = string([]rune(first)[0])
	}
	return fmt.Sprintf("%s, %s", last, initial)
}

func roundInt(v float64) int { return int(math.Round(v)) }

func clampPercentile(p int) int {
	if p < 1 {
		return 1
	}
	if p > 99 {
		return 99
	}
	return p
}

func ptr(v float64) *float64 { return &v }
func ptrInt(v int) *int      { return &v }
