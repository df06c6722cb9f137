package roster

// Dedupe reduces all records of a single reporting term to one
// canonical record per (studentId, subject).
//
// If the vendor marked any row in the term as the official growth
// record (growthmeasureyn), the canonical set is exactly the flagged
// rows; the flag is a term-wide signal, not a per-student one. Without
// the flag the tie-break is: lowest standard error, then most recent
// test date, then highest RIT score. Test dates are ISO-formatted, so
// plain string comparison orders them correctly and must stay that way.
//
// Missing standard error sorts worse than any present value. Group
// first-appearance order is preserved in the output.
func Dedupe(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r.OfficialGrowthRecord() {
			var out []Record
			for _, r := range records {
				if r.OfficialGrowthRecord() {
					out = append(out, r)
				}
			}
			return out
		}
	}

	best := make(map[string]Record, len(records))
	var order []string
	for _, r := range records {
		k := r.Key()
		cur, seen := best[k]
		if !seen {
			best[k] = r
			order = append(order, k)
			continue
		}
		if betterCanonical(r, cur) {
			best[k] = r
		}
	}

	out := make([]Record, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// DedupeByTerm partitions records by term name and dedupes each term
// independently, since the official-record flag is scoped to a term.
func DedupeByTerm(records []Record) []Record {
	byTerm := make(map[string][]Record)
	var terms []string
	for _, r := range records {
		if _, ok := byTerm[r.TermName]; !ok {
			terms = append(terms, r.TermName)
		}
		byTerm[r.TermName] = append(byTerm[r.TermName], r)
	}

	var out []Record
	for _, t := range terms {
		out = append(out, Dedupe(byTerm[t])...)
	}
	return out
}

// betterCanonical reports whether a should replace b as the canonical
// record for their shared (student, subject) key.
func betterCanonical(a, b Record) bool {
	aSE, bSE := seOrWorst(a), seOrWorst(b)
	if aSE != bSE {
		return aSE < bSE
	}
	if a.TestDate != b.TestDate {
		return a.TestDate > b.TestDate
	}
	aRIT, _ := Float64(a.RITScore)
	bRIT, _ := Float64(b.RITScore)
	return aRIT > bRIT
}

// seOrWorst treats a missing standard error as worse than any present
// one — never as zero, which would make an unmeasured row win.
func seOrWorst(r Record) float64 {
	if v, ok := Float64(r.StandardError); ok {
		return v
	}
	return maxSE
}

const maxSE = 1e9
