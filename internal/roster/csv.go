package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/classlens/growthreport/internal/term"
)

// ReadCSV decodes a flat roster export. Column positions are resolved
// from the header row, so reordered or extended exports keep working;
// rows shorter than the header are skipped rather than failing the
// batch. Only an unreadable stream or a missing header is an error.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("roster: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["studentid"]; !ok {
		return nil, fmt.Errorf("roster: header has no studentid column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: read row: %w", err)
		}

		rec := Record{
			TermName:           field(row, "termname"),
			DistrictName:       field(row, "districtname"),
			SchoolName:         field(row, "schoolname"),
			StudentID:          field(row, "studentid"),
			FirstName:          field(row, "studentfirstname"),
			LastName:           field(row, "studentlastname"),
			Gender:             field(row, "studentgender"),
			EthnicGroup:        field(row, "studentethnicgroup"),
			Grade:              field(row, "grade"),
			Subject:            field(row, "subject"),
			Course:             field(row, "course"),
			TestDate:           field(row, "teststartdate"),
			RITScore:           ParseFloat(field(row, "testritscore")),
			StandardError:      ParseFloat(field(row, "teststandarderror")),
			Percentile:         ParseFloat(field(row, "testpercentile")),
			GrowthMeasureYN:    field(row, "growthmeasureyn"),
			NormsReferenceData: field(row, "normsreferencedata"),
			WISelectedAYFall:   field(row, "wiselectedayfall"),
			WISelectedAYWinter: field(row, "wiselectedaywinter"),
		}
		if rec.StudentID == "" {
			continue
		}

		for _, p := range term.Periods() {
			g := GrowthMeasures{
				ProjectedGrowth:             ParseFloat(field(row, string(p)+"projectedgrowth")),
				ObservedGrowth:              ParseFloat(field(row, string(p)+"observedgrowth")),
				ObservedGrowthSE:            ParseFloat(field(row, string(p)+"observedgrowthse")),
				MetProjectedGrowth:          field(row, string(p)+"metprojectedgrowth"),
				ConditionalGrowthIndex:      ParseFloat(field(row, string(p)+"conditionalgrowthindex")),
				ConditionalGrowthPercentile: ParseFloat(field(row, string(p)+"conditionalgrowthpercentile")),
				GrowthQuintile:              field(row, string(p)+"growthquintile"),
			}
			if g.Empty() {
				continue
			}
			if rec.Growth == nil {
				rec.Growth = make(map[term.Period]GrowthMeasures, 2)
			}
			rec.Growth[p] = g
		}

		out = append(out, rec)
	}
	return out, nil
}
