package roster

import (
	"strconv"
	"strings"
)

// ParseFloat is the safe-parse rule used everywhere numbers come out of
// the export: empty or malformed input is nil ("no data"), a parsed "0"
// stays 0. Nothing in the pipeline may coerce absence to zero.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Float64 dereferences a nullable value with an explicit present flag.
func Float64(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func ptr(v float64) *float64 { return &v }
