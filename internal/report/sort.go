package report

import (
	"sort"
	"strings"

	"github.com/classlens/growthreport/internal/derive"
)

// numericColumn extracts the sortable number for columns that compare
// numerically; nil means "no data" and sorts after every present value.
var numericColumn = map[string]func(derive.Derived) *float64{
	"testRITScore":                func(d derive.Derived) *float64 { return d.RITScore },
	"testStandardError":           func(d derive.Derived) *float64 { return d.StandardError },
	"testPercentile":              func(d derive.Derived) *float64 { return d.Percentile },
	"startTermScore":              func(d derive.Derived) *float64 { return d.StartTermScore },
	"projectedScore":              func(d derive.Derived) *float64 { return d.ProjectedScore },
	"growthIndex":                 func(d derive.Derived) *float64 { return d.GrowthIndex },
	"observedGrowth":              func(d derive.Derived) *float64 { return d.ObservedGrowth },
	"projectedGrowth":             func(d derive.Derived) *float64 { return d.ProjectedGrowth },
	"observedGrowthSE":            func(d derive.Derived) *float64 { return d.ObservedGrowthSE },
	"conditionalGrowthIndex":      func(d derive.Derived) *float64 { return d.ConditionalGrowthIndex },
	"conditionalGrowthPercentile": func(d derive.Derived) *float64 { return d.ConditionalGrowthPercentile },
	"startTermPercentile":         func(d derive.Derived) *float64 { return intPtrFloat(d.StartTermPercentile) },
	"endTermPercentile":           func(d derive.Derived) *float64 { return intPtrFloat(d.EndTermPercentile) },
}

func stringColumn(d derive.Derived, column string) string {
	switch column {
	case "studentName":
		return d.StudentName
	case "studentNameShort":
		return d.StudentNameShort
	case "studentId":
		return d.StudentID
	case "studentLastName":
		return d.LastName
	case "studentFirstName":
		return d.FirstName
	case "subject":
		return d.Subject
	case "course":
		return d.Course
	case "grade":
		return d.Grade
	case "testStartDate":
		return d.TestDate
	case "metProjectedGrowth":
		return d.MetProjectedGrowth
	case "growthQuintile":
		return d.GrowthQuintile
	case "schoolName":
		return d.SchoolName
	case "districtName":
		return d.DistrictName
	default:
		return ""
	}
}

// Sort orders records by column without mutating the input. Numeric
// columns compare numerically with absent values last; everything else
// compares as case-folded strings. Ties keep their relative order.
func Sort(records []derive.Derived, column string, descending bool) []derive.Derived {
	out := make([]derive.Derived, len(records))
	copy(out, records)
	if column == "" {
		return out
	}

	if num, ok := numericColumn[column]; ok {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := num(out[i]), num(out[j])
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			if descending {
				return *a > *b
			}
			return *a < *b
		})
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(stringColumn(out[i], column))
		b := strings.ToLower(stringColumn(out[j], column))
		if descending {
			return a > b
		}
		return a < b
	})
	return out
}

func intPtrFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}
