package report

import (
	"testing"

	"github.com/classlens/growthreport/internal/derive"
	"github.com/classlens/growthreport/internal/roster"
)

func drec(id, subject, grade, gender, ethnicity string) derive.Derived {
	return derive.Derived{Record: roster.Record{
		TermName:     "Winter 2025-2026",
		DistrictName: "District A",
		SchoolName:   "School 1",
		StudentID:    id,
		Subject:      subject,
		Grade:        grade,
		Gender:       gender,
		EthnicGroup:  ethnicity,
	}}
}

func sample() []derive.Derived {
	return []derive.Derived{
		drec("S1", "Mathematics", "5", "F", "Hispanic or Latino"),
		drec("S2", "Reading", "5", "M", "White"),
		drec("S3", "Mathematics", "6", "F", "White"),
	}
}

func TestFilterNilSliceMeansNoFilter(t *testing.T) {
	out := Filter(sample(), Criteria{Subjects: nil})
	if len(out) != 3 {
		t.Fatalf("nil subjects must pass everything, got %d", len(out))
	}
}

func TestFilterActiveEmptySubjectsExcludesAll(t *testing.T) {
	out := Filter(sample(), Criteria{Subjects: []string{}})
	if len(out) != 0 {
		t.Fatalf("non-nil empty subjects is an active selection excluding all, got %d", len(out))
	}
}

func TestFilterEmptyGradesMeansNoFilter(t *testing.T) {
	// grades deliberately behaves differently from subjects: empty
	// slice applies no filter.
	out := Filter(sample(), Criteria{Grades: []string{}})
	if len(out) != 3 {
		t.Fatalf("empty grades must pass everything, got %d", len(out))
	}
}

func TestFilterMembership(t *testing.T) {
	out := Filter(sample(), Criteria{Subjects: []string{"Mathematics"}, Grades: []string{"5"}})
	if len(out) != 1 || out[0].StudentID != "S1" {
		t.Fatalf("expected only S1, got %+v", out)
	}

	out = Filter(sample(), Criteria{Genders: []string{"F"}, Ethnicities: []string{"White"}})
	if len(out) != 1 || out[0].StudentID != "S3" {
		t.Fatalf("expected only S3, got %+v", out)
	}
}

func TestFilterScalars(t *testing.T) {
	out := Filter(sample(), Criteria{TermName: "Winter 2025-2026", SchoolName: "School 1"})
	if len(out) != 3 {
		t.Fatalf("matching scalars must pass everything, got %d", len(out))
	}
	out = Filter(sample(), Criteria{SchoolName: "School 2"})
	if len(out) != 0 {
		t.Fatalf("non-matching school must exclude everything, got %d", len(out))
	}
	out = Filter(sample(), Criteria{})
	if len(out) != 3 {
		t.Fatalf("zero criteria must pass everything, got %d", len(out))
	}
}

func TestGroupBySubject(t *testing.T) {
	recs := sample()
	recs[0].Course = "Math 6+"
	recs[2].Course = "Math 6+"

	groups := GroupBySubject(recs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Course wins over subject; first-appearance order.
	if groups[0].Key != "Math 6+" || groups[1].Key != "Reading" {
		t.Errorf("unexpected group keys: %q, %q", groups[0].Key, groups[1].Key)
	}
	if len(groups[0].Records) != 2 || groups[0].Records[0].StudentID != "S1" {
		t.Errorf("input order not preserved within group: %+v", groups[0].Records)
	}
}
