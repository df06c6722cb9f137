package report

import (
	"testing"

	"github.com/classlens/growthreport/internal/derive"
	"github.com/classlens/growthreport/internal/roster"
)

func fptr(v float64) *float64 { return &v }

func TestSortNumericWithNilsLast(t *testing.T) {
	recs := []derive.Derived{
		{Record: roster.Record{StudentID: "A", RITScore: fptr(220)}},
		{Record: roster.Record{StudentID: "B"}},
		{Record: roster.Record{StudentID: "C", RITScore: fptr(195)}},
	}

	asc := Sort(recs, "testRITScore", false)
	if asc[0].StudentID != "C" || asc[1].StudentID != "A" || asc[2].StudentID != "B" {
		t.Errorf("ascending: got %s %s %s", asc[0].StudentID, asc[1].StudentID, asc[2].StudentID)
	}

	desc := Sort(recs, "testRITScore", true)
	if desc[0].StudentID != "A" || desc[1].StudentID != "C" || desc[2].StudentID != "B" {
		t.Errorf("descending: got %s %s %s", desc[0].StudentID, desc[1].StudentID, desc[2].StudentID)
	}

	// Input untouched.
	if recs[0].StudentID != "A" {
		t.Errorf("Sort must not mutate its input")
	}
}

func TestSortStringCaseFolded(t *testing.T) {
	recs := []derive.Derived{
		{StudentName: "zimmer, Zoe"},
		{StudentName: "Adams, Al"},
		{StudentName: "baker, Bo"},
	}
	out := Sort(recs, "studentName", false)
	if out[0].StudentName != "Adams, Al" || out[1].StudentName != "baker, Bo" || out[2].StudentName != "zimmer, Zoe" {
		t.Errorf("got %q %q %q", out[0].StudentName, out[1].StudentName, out[2].StudentName)
	}
}

func TestSortStableOnTies(t *testing.T) {
	recs := []derive.Derived{
		{Record: roster.Record{StudentID: "first", Grade: "5"}},
		{Record: roster.Record{StudentID: "second", Grade: "5"}},
		{Record: roster.Record{StudentID: "third", Grade: "5"}},
	}
	out := Sort(recs, "grade", false)
	if out[0].StudentID != "first" || out[1].StudentID != "second" || out[2].StudentID != "third" {
		t.Errorf("ties must keep relative order: %s %s %s",
			out[0].StudentID, out[1].StudentID, out[2].StudentID)
	}
}

func TestSortEmptyColumnIsIdentity(t *testing.T) {
	recs := []derive.Derived{
		{Record: roster.Record{StudentID: "B"}},
		{Record: roster.Record{StudentID: "A"}},
	}
	out := Sort(recs, "", false)
	if out[0].StudentID != "B" || out[1].StudentID != "A" {
		t.Errorf("empty column must preserve order")
	}
}
