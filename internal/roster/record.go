package roster

import (
	"strings"

	"github.com/classlens/growthreport/internal/term"
)

// GrowthMeasures is the vendor-supplied growth column group for one
// comparison window. All numeric fields are nullable: an absent value in
// the export means "no data", never zero.
type GrowthMeasures struct {
	ProjectedGrowth             *float64 `json:"projectedGrowth,omitempty"`
	ObservedGrowth              *float64 `json:"observedGrowth,omitempty"`
	ObservedGrowthSE            *float64 `json:"observedGrowthSE,omitempty"`
	MetProjectedGrowth          string   `json:"metProjectedGrowth,omitempty"`
	ConditionalGrowthIndex      *float64 `json:"conditionalGrowthIndex,omitempty"`
	ConditionalGrowthPercentile *float64 `json:"conditionalGrowthPercentile,omitempty"`
	GrowthQuintile              string   `json:"growthQuintile,omitempty"`
}

// Empty reports whether no value in the group is populated.
func (g GrowthMeasures) Empty() bool {
	return g.ProjectedGrowth == nil && g.ObservedGrowth == nil && g.ObservedGrowthSE == nil &&
		g.MetProjectedGrowth == "" && g.ConditionalGrowthIndex == nil &&
		g.ConditionalGrowthPercentile == nil && g.GrowthQuintile == ""
}

// Record is one test event from the roster export. The slice artifacts
// serialize this shape directly; the derivation engine never sees the
// raw CSV.
type Record struct {
	TermName     string `json:"termName"`
	DistrictName string `json:"districtName"`
	SchoolName   string `json:"schoolName"`

	StudentID   string `json:"studentId"`
	FirstName   string `json:"studentFirstName"`
	LastName    string `json:"studentLastName"`
	Gender      string `json:"studentGender,omitempty"`
	EthnicGroup string `json:"studentEthnicGroup,omitempty"`
	Grade       string `json:"grade"`

	Subject string `json:"subject"`
	Course  string `json:"course,omitempty"`

	TestDate      string   `json:"testStartDate"`
	RITScore      *float64 `json:"testRITScore,omitempty"`
	StandardError *float64 `json:"testStandardError,omitempty"`
	Percentile    *float64 `json:"testPercentile,omitempty"`

	// GrowthMeasureYN is the vendor marker for official growth records;
	// kept as the raw export string ("TRUE"/"FALSE"/"").
	GrowthMeasureYN    string `json:"growthMeasureYN,omitempty"`
	NormsReferenceData string `json:"normsReferenceData,omitempty"`
	WISelectedAYFall   string `json:"wiSelectedAYFall,omitempty"`
	WISelectedAYWinter string `json:"wiSelectedAYWinter,omitempty"`

	Growth map[term.Period]GrowthMeasures `json:"growth,omitempty"`
}

// OfficialGrowthRecord reports whether the vendor flagged this row as
// the designated growth record for its term.
func (r Record) OfficialGrowthRecord() bool {
	return strings.EqualFold(strings.TrimSpace(r.GrowthMeasureYN), "true")
}

// GrowthFor returns the growth column group for a window; the zero
// group when the export carried nothing for it.
func (r Record) GrowthFor(p term.Period) GrowthMeasures {
	if r.Growth == nil {
		return GrowthMeasures{}
	}
	return r.Growth[p]
}

// Key identifies the (student, subject) pair a canonical record stands
// for within one term.
func (r Record) Key() string {
	return r.StudentID + "|" + r.Subject
}
