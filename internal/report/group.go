package report

import "github.com/classlens/growthreport/internal/derive"

// Group is one course-or-subject bucket in first-appearance order.
type Group struct {
	Key     string           `json:"key"`
	Records []derive.Derived `json:"records"`
}

// GroupBySubject buckets records by course when present, else subject.
// Bucket order follows first appearance; record order within a bucket
// follows the input.
func GroupBySubject(records []derive.Derived) []Group {
	index := map[string]int{}
	var groups []Group
	for _, d := range records {
		key := d.Course
		if key == "" {
			key = d.Subject
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, d)
	}
	return groups
}
