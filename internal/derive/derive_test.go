package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classlens/growthreport/internal/norms"
	"github.com/classlens/growthreport/internal/roster"
	"github.com/classlens/growthreport/internal/term"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	tbl, err := norms.Load()
	require.NoError(t, err)
	return NewEngine(tbl)
}

func baseRecord() roster.Record {
	return roster.Record{
		TermName:      "Winter 2025-2026",
		StudentID:     "S1",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Subject:       "Mathematics",
		Grade:         "5",
		TestDate:      "2026-01-28",
		RITScore:      ptr(243),
		StandardError: ptr(3.26),
		Percentile:    ptr(74),
		Growth: map[term.Period]roster.GrowthMeasures{
			term.FallToWinter: {
				ObservedGrowth:              ptr(6),
				ProjectedGrowth:             ptr(7),
				ConditionalGrowthIndex:      ptr(-0.17),
				ConditionalGrowthPercentile: ptr(43),
			},
		},
	}
}

func TestDeriveCoreArithmetic(t *testing.T) {
	e := newEngine(t)
	labels := term.Resolve("Winter 2025-2026", term.FallToWinter)

	d := e.Derive(baseRecord(), term.FallToWinter, nil, labels)

	assert.True(t, d.HasGrowthData)
	require.NotNil(t, d.StartTermScore)
	assert.Equal(t, 237.0, *d.StartTermScore) // 243 - 6
	require.NotNil(t, d.ProjectedScore)
	assert.Equal(t, 244.0, *d.ProjectedScore) // 237 + 7
	require.NotNil(t, d.GrowthIndex)
	assert.Equal(t, -1.0, *d.GrowthIndex) // 6 - 7

	// Vendor's CGI rides along untouched; it is not the growth index.
	require.NotNil(t, d.ConditionalGrowthIndex)
	assert.Equal(t, -0.17, *d.ConditionalGrowthIndex)
}

func TestDeriveRITRangeUsesOneSE(t *testing.T) {
	e := newEngine(t)
	d := e.Derive(baseRecord(), term.FallToWinter, nil, term.LabelSet{})

	require.NotNil(t, d.EndRITLowDisplay)
	require.NotNil(t, d.EndRITHighDisplay)
	assert.Equal(t, 240, *d.EndRITLowDisplay)  // round(243 - 3.26), not -2 SE
	assert.Equal(t, 246, *d.EndRITHighDisplay) // round(243 + 3.26)
	assert.InDelta(t, 239.74, *d.EndRITLow, 1e-9)
	assert.InDelta(t, 246.26, *d.EndRITHigh, 1e-9)
}

func TestDeriveNoGrowthDataLeavesStartNil(t *testing.T) {
	e := newEngine(t)
	rec := baseRecord()
	rec.Growth = nil

	d := e.Derive(rec, term.FallToWinter, nil, term.LabelSet{})

	assert.False(t, d.HasGrowthData)
	assert.Nil(t, d.StartTermScore, "start score must not default to the end score")
	assert.Nil(t, d.ProjectedScore)
	assert.Nil(t, d.GrowthIndex)
	// End-term fields still render from current-term data.
	require.NotNil(t, d.EndTermPercentile)
	assert.Equal(t, 74, *d.EndTermPercentile)
}

func TestDeriveObservedOnlyProjectedMissing(t *testing.T) {
	e := newEngine(t)
	rec := baseRecord()
	g := rec.Growth[term.FallToWinter]
	g.ProjectedGrowth = nil
	rec.Growth[term.FallToWinter] = g

	d := e.Derive(rec, term.FallToWinter, nil, term.LabelSet{})
	assert.True(t, d.HasGrowthData)
	require.NotNil(t, d.StartTermScore)
	assert.Nil(t, d.ProjectedScore)
	assert.Nil(t, d.GrowthIndex)
}

func TestDeriveSameYearStartPercentileFromPriorRecord(t *testing.T) {
	e := newEngine(t)
	labels := term.Resolve("Winter 2025-2026", term.FallToWinter)

	rec := baseRecord()
	prior := PriorLookup{
		rec.Key(): {
			StudentID:     "S1",
			Subject:       "Mathematics",
			Percentile:    ptr(68),
			StandardError: ptr(3.1),
		},
	}

	d := e.Derive(rec, term.FallToWinter, prior, labels)
	require.NotNil(t, d.StartTermPercentile)
	// Scored under the norms in effect at test time: taken verbatim.
	assert.Equal(t, 68, *d.StartTermPercentile)
	assert.Equal(t, 66, *d.StartTermPercentileLow)
	assert.Equal(t, 70, *d.StartTermPercentileHigh)
}

func TestDeriveYearOverYearRanksAgainstPriorGrade(t *testing.T) {
	e := newEngine(t)
	labels := term.Resolve("Winter 2025-2026", term.WinterToWinter)

	rec := baseRecord()
	rec.Growth = map[term.Period]roster.GrowthMeasures{
		term.WinterToWinter: {
			ObservedGrowth:  ptr(10),
			ProjectedGrowth: ptr(8),
		},
	}
	// Prior record carries a stale percentile that must NOT be used
	// while the norms lookup succeeds.
	prior := PriorLookup{
		rec.Key(): {
			StudentID:     "S1",
			Subject:       "Mathematics",
			Percentile:    ptr(99),
			StandardError: ptr(3.0),
		},
	}

	d := e.Derive(rec, term.WinterToWinter, prior, labels)
	require.NotNil(t, d.StartTermScore)
	assert.Equal(t, 233.0, *d.StartTermScore)

	// Grade 5 steps down to 4; MA_WI_4 covers the key, so the rank is
	// re-derived, not the stale 99.
	require.NotNil(t, d.StartTermPercentile)
	assert.NotEqual(t, 99, *d.StartTermPercentile)
	require.NotNil(t, d.StartTermPercentileLow)
	require.NotNil(t, d.StartTermPercentileHigh)
	assert.LessOrEqual(t, *d.StartTermPercentileLow, *d.StartTermPercentile)
	assert.LessOrEqual(t, *d.StartTermPercentile, *d.StartTermPercentileHigh)
}

func TestDeriveYearOverYearFallsBackWhenNoTable(t *testing.T) {
	e := newEngine(t)
	labels := term.Resolve("Winter 2025-2026", term.WinterToWinter)

	rec := baseRecord()
	rec.Subject = "Art" // no norms coverage
	rec.Growth = map[term.Period]roster.GrowthMeasures{
		term.WinterToWinter: {ObservedGrowth: ptr(10), ProjectedGrowth: ptr(8)},
	}
	prior := PriorLookup{
		rec.Key(): {StudentID: "S1", Subject: "Art", Percentile: ptr(61)},
	}

	d := e.Derive(rec, term.WinterToWinter, prior, labels)
	require.NotNil(t, d.StartTermPercentile)
	assert.Equal(t, 61, *d.StartTermPercentile)
}

func TestDeriveMissingSECollapsesRange(t *testing.T) {
	e := newEngine(t)
	rec := baseRecord()
	rec.StandardError = nil

	d := e.Derive(rec, term.FallToWinter, nil, term.LabelSet{})
	require.NotNil(t, d.EndRITLowDisplay)
	assert.Equal(t, 243, *d.EndRITLowDisplay)
	assert.Equal(t, 243, *d.EndRITHighDisplay)
}

func TestChartEligible(t *testing.T) {
	in := []Derived{
		{EndTermPercentile: ptrInt(74), ConditionalGrowthPercentile: ptr(43)},
		{EndTermPercentile: nil, ConditionalGrowthPercentile: ptr(43)},
		{EndTermPercentile: ptrInt(74), ConditionalGrowthPercentile: nil},
		{},
	}
	out := ChartEligible(in)
	require.Len(t, out, 1)
	assert.Equal(t, 74, *out[0].EndTermPercentile)
}

func TestPrevGrade(t *testing.T) {
	cases := map[string]string{
		"5":  "4",
		"1":  "K",
		"K":  "K",
		"PK": "PK",
		"12": "11",
		"":   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, PrevGrade(in), "PrevGrade(%q)", in)
	}
}

func TestDisplayNames(t *testing.T) {
	e := newEngine(t)
	d := e.Derive(baseRecord(), term.FallToWinter, nil, term.LabelSet{})
	assert.Equal(t, "Lovelace, Ada", d.StudentName)
	assert.Equal(t, "Lovelace, A", d.StudentNameShort)
}
