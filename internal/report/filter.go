// Package report applies the presentation-facing transforms — filter,
// sort, group — and orchestrates one report generation over the slice
// artifacts.
package report

import "github.com/classlens/growthreport/internal/derive"

// Criteria is one filter selection. Scalar fields match exactly and an
// empty string means "no filter".
//
// The slice fields carry two deliberately different empty semantics,
// preserved from the product requirements:
//
//   - Grades: an empty slice (nil or not) applies no filter.
//   - Subjects, Genders, Ethnicities: a nil slice applies no filter,
//     but a non-nil empty slice is an active selection that excludes
//     every record.
//
// Do not unify the two without product sign-off.
type Criteria struct {
	TermName     string   `json:"termName,omitempty"`
	SchoolName   string   `json:"schoolName,omitempty"`
	DistrictName string   `json:"districtName,omitempty"`
	Grades       []string `json:"grades,omitempty"`
	Subjects     []string `json:"subjects,omitempty"`
	Genders      []string `json:"genders,omitempty"`
	Ethnicities  []string `json:"ethnicities,omitempty"`
}

// Filter returns the records matching c, preserving input order.
func Filter(records []derive.Derived, c Criteria) []derive.Derived {
	out := make([]derive.Derived, 0, len(records))
	for _, d := range records {
		if matches(d, c) {
			out = append(out, d)
		}
	}
	return out
}

func matches(d derive.Derived, c Criteria) bool {
	if c.TermName != "" && d.TermName != c.TermName {
		return false
	}
	if c.SchoolName != "" && d.SchoolName != c.SchoolName {
		return false
	}
	if c.DistrictName != "" && d.DistrictName != c.DistrictName {
		return false
	}
	if len(c.Grades) > 0 && !contains(c.Grades, d.Grade) {
		return false
	}
	if c.Subjects != nil && !contains(c.Subjects, d.Subject) {
		return false
	}
	if c.Genders != nil && !contains(c.Genders, d.Gender) {
		return false
	}
	if c.Ethnicities != nil && !contains(c.Ethnicities, d.EthnicGroup) {
		return false
	}
	return true
}

func contains(vals []string, v string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}
