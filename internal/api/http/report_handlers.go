package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/classlens/growthreport/internal/report"
	"github.com/classlens/growthreport/internal/term"
)

// IndexHandler serves the artifact catalog that drives the term /
// district / school selectors.
func IndexHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := svc.Index(r.Context())
		if err != nil {
			http.Error(w, "index unavailable", http.StatusBadGateway)
			return
		}
		writeJSON(w, idx)
	}
}

// ReportHandler generates one report from query parameters.
//
// term and period are required. district and school default to "all".
// grades, subjects, genders and ethnicities are comma-separated lists;
// for subjects/genders/ethnicities the parameter being present but
// empty is an active empty selection that matches nothing, while an
// absent parameter applies no filter. grades treats both the same.
func ReportHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := parseRequest(w, r)
		if !ok {
			return
		}
		rep, err := svc.Generate(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, rep)
	}
}

// ChartHandler generates a report and returns only the records the
// quadrant chart may plot.
func ChartHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := parseRequest(w, r)
		if !ok {
			return
		}
		rep, err := svc.Generate(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, svc.ChartRecords(rep))
	}
}

func parseRequest(w http.ResponseWriter, r *http.Request) (report.Request, bool) {
	q := r.URL.Query()

	termName := q.Get("term")
	if termName == "" {
		http.Error(w, "term required", http.StatusBadRequest)
		return report.Request{}, false
	}
	period := term.Period(q.Get("period"))
	if !period.Valid() {
		http.Error(w, "unknown period", http.StatusBadRequest)
		return report.Request{}, false
	}

	return report.Request{
		TermName:     termName,
		DistrictName: q.Get("district"),
		SchoolName:   q.Get("school"),
		Period:       period,
		Criteria: report.Criteria{
			Grades:      listParam(q, "grades"),
			Subjects:    listParam(q, "subjects"),
			Genders:     listParam(q, "genders"),
			Ethnicities: listParam(q, "ethnicities"),
		},
		SortColumn:     q.Get("sortBy"),
		SortDescending: q.Get("sortDir") == "desc",
	}, true
}

// listParam distinguishes an absent parameter (nil, no filter) from a
// present-but-empty one (non-nil empty slice, active selection).
func listParam(q url.Values, key string) []string {
	vals, present := q[key]
	if !present {
		return nil
	}
	out := []string{}
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
