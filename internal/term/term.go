package term

import (
	"fmt"
	"regexp"
	"strconv"
)

// Period identifies one of the vendor's six growth-comparison windows.
// The string values double as the column prefixes in the roster export
// (e.g. "falltowinterobservedgrowth").
type Period string

const (
	FallToWinter   Period = "falltowinter"
	FallToSpring   Period = "falltospring"
	WinterToSpring Period = "wintertospring"
	FallToFall     Period = "falltofall"
	WinterToWinter Period = "wintertowinter"
	SpringToSpring Period = "springtospring"
)

// Periods lists all growth-comparison windows in display order.
func Periods() []Period {
	return []Period{FallToWinter, FallToSpring, WinterToSpring, FallToFall, WinterToWinter, SpringToSpring}
}

// Valid reports whether p is one of the six known windows.
func (p Period) Valid() bool {
	switch p {
	case FallToWinter, FallToSpring, WinterToSpring, FallToFall, WinterToWinter, SpringToSpring:
		return true
	}
	return false
}

// SameSchoolYear reports whether both endpoints of the window fall inside
// one school year. Year-over-year windows need a prior year's export to
// recover the start-term percentile; same-year windows do not.
func (p Period) SameSchoolYear() bool {
	switch p {
	case FallToWinter, FallToSpring, WinterToSpring:
		return true
	}
	return false
}

type Season string

const (
	Fall   Season = "Fall"
	Winter Season = "Winter"
	Spring Season = "Spring"
)

// Code returns the vendor short code for a season (FA/WI/SP).
func (s Season) Code() string {
	switch s {
	case Fall:
		return "FA"
	case Winter:
		return "WI"
	case Spring:
		return "SP"
	}
	return ""
}

// LabelSet carries the resolved display identity of a growth window:
// seasons, calendar years, human labels ("Fall 2025") and short codes
// ("FA 2025") for both endpoints. The zero value means the window could
// not be resolved and must render as "no period".
type LabelSet struct {
	StartSeason Season `json:"startSeason,omitempty"`
	StartYear   int    `json:"startYear,omitempty"`
	EndSeason   Season `json:"endSeason,omitempty"`
	EndYear     int    `json:"endYear,omitempty"`
	StartLabel  string `json:"startLabel,omitempty"`
	EndLabel    string `json:"endLabel,omitempty"`
	StartCode   string `json:"startCode,omitempty"`
	EndCode     string `json:"endCode,omitempty"`
}

var termNameRe = regexp.MustCompile(`^\s*(Fall|Winter|Spring)\s+(\d{4})-(\d{4})\s*$`)

// Parse splits a reporting-term name like "Winter 2025-2026" into its
// season and the two calendar years of the school-year span. ok is false
// for anything that does not match the vendor pattern.
func Parse(termName string) (season Season, startYear, endYear int, ok bool) {
	m := termNameRe.FindStringSubmatch(termName)
	if m == nil {
		return "", 0, 0, false
	}
	startYear, _ = strconv.Atoi(m[2])
	endYear, _ = strconv.Atoi(m[3])
	return Season(m[1]), startYear, endYear, true
}

// Resolve maps a reporting term plus a growth window onto concrete
// (season, year) endpoints. The table is vendor business logic, not a
// calendar computation: winter terms display under the second year of
// the span, fall terms under the first. Unparseable input yields the
// zero LabelSet rather than an error; callers render that as "no data".
func Resolve(termName string, p Period) LabelSet {
	_, startYear, endYear, ok := Parse(termName)
	if !ok {
		return LabelSet{}
	}

	var ls LabelSet
	switch p {
	case FallToWinter:
		ls = endpoints(Fall, startYear, Winter, endYear)
	case FallToSpring:
		ls = endpoints(Fall, startYear, Spring, endYear)
	case WinterToSpring:
		ls = endpoints(Winter, endYear, Spring, endYear)
	case FallToFall:
		ls = endpoints(Fall, startYear-1, Fall, startYear)
	case WinterToWinter:
		ls = endpoints(Winter, startYear, Winter, endYear)
	case SpringToSpring:
		ls = endpoints(Spring, startYear, Spring, endYear)
	default:
		return LabelSet{}
	}
	return ls
}

func endpoints(ss Season, sy int, es Season, ey int) LabelSet {
	return LabelSet{
		StartSeason: ss,
		StartYear:   sy,
		EndSeason:   es,
		EndYear:     ey,
		StartLabel:  fmt.Sprintf("%s %d", ss, sy),
		EndLabel:    fmt.Sprintf("%s %d", es, ey),
		StartCode:   fmt.Sprintf("%s %d", ss.Code(), sy),
		EndCode:     fmt.Sprintf("%s %d", es.Code(), ey),
	}
}

// PriorTermName names the prior school year's reporting term whose
// export must be loaded to recover a cross-year start percentile.
// Only year-over-year windows have one; same-year windows return ""
// because their start data ships inside the current export.
func PriorTermName(termName string, p Period) string {
	if p.SameSchoolYear() {
		return ""
	}
	ls := Resolve(termName, p)
	if ls == (LabelSet{}) {
		return ""
	}
	_, startYear, endYear, _ := Parse(termName)
	return fmt.Sprintf("%s %d-%d", ls.StartSeason, startYear-1, endYear-1)
}

// StartTermName names the reporting term that holds the start endpoint's
// original test event, for any window. Same-year windows point at a term
// within the same span (e.g. "Fall 2025-2026" for a falltowinter view of
// "Winter 2025-2026"); year-over-year windows defer to PriorTermName.
func StartTermName(termName string, p Period) string {
	if !p.SameSchoolYear() {
		return PriorTermName(termName, p)
	}
	ls := Resolve(termName, p)
	if ls == (LabelSet{}) {
		return ""
	}
	_, startYear, endYear, _ := Parse(termName)
	return fmt.Sprintf("%s %d-%d", ls.StartSeason, startYear, endYear)
}
