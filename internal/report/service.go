package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/classlens/growthreport/internal/derive"
	"github.com/classlens/growthreport/internal/norms"
	"github.com/classlens/growthreport/internal/roster"
	"github.com/classlens/growthreport/internal/slicestore"
	"github.com/classlens/growthreport/internal/term"
)

// Request selects one report: a reporting term, an optional district
// and school scope ("" means all), the growth window, and the
// presentation criteria.
type Request struct {
	TermName     string      `json:"termName"`
	DistrictName string      `json:"districtName,omitempty"`
	SchoolName   string      `json:"schoolName,omitempty"`
	Period       term.Period `json:"period"`

	Criteria Criteria `json:"criteria"`

	SortColumn     string `json:"sortColumn,omitempty"`
	SortDescending bool   `json:"sortDescending,omitempty"`
}

// Report is one generated result set.
type Report struct {
	TermName string           `json:"termName"`
	Period   term.Period      `json:"period"`
	Labels   term.LabelSet    `json:"labels"`
	Records  []derive.Derived `json:"records"`
	Groups   []Group          `json:"groups"`
}

// Service orchestrates report generation: load the selected slices,
// build the start-term lookup, derive, filter, sort, group. It holds
// no mutable state beyond a TTL cache of loaded slices; each Generate
// call produces an independent result.
type Service struct {
	store  slicestore.Reader
	engine *derive.Engine
	cache  *gocache.Cache
}

func NewService(store slicestore.Reader, tbl norms.Table, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		store:  store,
		engine: derive.NewEngine(tbl),
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// Index exposes the artifact catalog for the cascading selectors.
func (s *Service) Index(ctx context.Context) (slicestore.Index, error) {
	return s.store.Index(ctx)
}

type target struct{ district, school string }

// Generate runs one full report. A failure to load any primary slice
// fails the whole request; failures loading start-term slices only
// degrade the affected start percentiles to "no data".
func (s *Service) Generate(ctx context.Context, req Request) (*Report, error) {
	if req.TermName == "" {
		return nil, fmt.Errorf("report: term name required")
	}
	if !req.Period.Valid() {
		return nil, fmt.Errorf("report: unknown growth period %q", req.Period)
	}

	idx, err := s.store.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: load index: %w", err)
	}
	targets := expandTargets(idx, req.TermName, req.DistrictName, req.SchoolName)
	if len(targets) == 0 {
		return nil, fmt.Errorf("report: no data for term %q district %q school %q",
			req.TermName, req.DistrictName, req.SchoolName)
	}

	records, err := s.loadAll(ctx, req.TermName, targets, false)
	if err != nil {
		return nil, err
	}

	labels := term.Resolve(req.TermName, req.Period)
	prior := s.buildPriorLookup(ctx, idx, req, targets)

	derived := s.engine.DeriveAll(records, req.Period, prior, labels)
	derived = Filter(derived, req.Criteria)
	derived = Sort(derived, req.SortColumn, req.SortDescending)

	return &Report{
		TermName: req.TermName,
		Period:   req.Period,
		Labels:   labels,
		Records:  derived,
		Groups:   GroupBySubject(derived),
	}, nil
}

// ChartRecords is the chart-eligible subset of a generated report.
func (s *Service) ChartRecords(rep *Report) []derive.Derived {
	return derive.ChartEligible(rep.Records)
}

// buildPriorLookup loads the slices of the window's start term and keys
// them by (student, subject). The start term may be missing entirely —
// a district's first year, or a school slice that was never exported —
// and that must not fail the report, so load errors are swallowed and
// the lookup just stays sparse.
func (s *Service) buildPriorLookup(ctx context.Context, idx slicestore.Index, req Request, targets []target) derive.PriorLookup {
	startTerm := term.StartTermName(req.TermName, req.Period)
	if startTerm == "" || startTerm == req.TermName {
		return nil
	}

	// The start term's catalog may scope differently; intersect with it
	// so we only fetch slices that exist.
	priorTargets := expandTargets(idx, startTerm, req.DistrictName, req.SchoolName)
	if len(priorTargets) == 0 {
		return nil
	}

	records, _ := s.loadAll(ctx, startTerm, priorTargets, true)
	if len(records) == 0 {
		return nil
	}
	lookup := make(derive.PriorLookup, len(records))
	for _, r := range records {
		lookup[r.Key()] = r
	}
	return lookup
}

// loadAll fetches every target's slice concurrently and merges by
// concatenation in target order. With bestEffort set, per-slice
// failures contribute nothing instead of failing the batch.
func (s *Service) loadAll(ctx context.Context, termName string, targets []target, bestEffort bool) ([]roster.Record, error) {
	results := make([][]roster.Record, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, tg := range targets {
		i, tg := i, tg
		g.Go(func() error {
			recs, err := s.loadSlice(gctx, termName, tg.district, tg.school)
			if err != nil {
				if bestEffort {
					return nil
				}
				return fmt.Errorf("report: load slice %s/%s/%s: %w", termName, tg.district, tg.school, err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []roster.Record
	for _, recs := range results {
		merged = append(merged, recs...)
	}
	return merged, nil
}

func (s *Service) loadSlice(ctx context.Context, termName, district, school string) ([]roster.Record, error) {
	key := slicestore.SliceKey(termName, district, school)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]roster.Record), nil
	}
	recs, err := s.store.Slice(ctx, termName, district, school)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, recs, gocache.DefaultExpiration)
	return recs, nil
}

// expandTargets resolves the (district, school) scope against the
// index: empty district means every district in the term, empty school
// every school in the chosen districts. Order is sorted for
// deterministic merges.
func expandTargets(idx slicestore.Index, termName, district, school string) []target {
	districts, ok := idx[termName]
	if !ok {
		return nil
	}

	var out []target
	for d, schools := range districts {
		if district != "" && d != district {
			continue
		}
		for sc := range schools {
			if school != "" && sc != school {
				continue
			}
			out = append(out, target{district: d, school: sc})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].district != out[j].district {
			return out[i].district < out[j].district
		}
		return out[i].school < out[j].school
	})
	return out
}
