package analysis

import (
	"fmt"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// OutcomeOptions select the outcome category and the grouping layout.
type OutcomeOptions struct {
	// Outcome is the last-outcome category counted as unsolved.
	Outcome string
	// Expand emits every combination of observed dimension values,
	// filling groups with no records with zeros.
	Expand bool
}

// OutcomeRate reports, per group of dims, the total records, the records whose
// outcome equals opt.Outcome and their share as a percentage in [0, 100].
// Groups with a zero total get a rate of 0.
func OutcomeRate(ds *crime.Dataset, opt OutcomeOptions, dims ...Dimension) *Table {
	total := newGroupCounter()
	matched := map[string]float64{}
	distinct := make([][]string, len(dims))
	seen := make([]map[string]bool, len(dims))
	for i := range seen {
		seen[i] = map[string]bool{}
	}
	if ds != nil {
		for _, r := range ds.Records {
			keys := keyOf(r, dims)
			total.add(keys, 1)
			if r.Outcome == opt.Outcome {
				matched[joinKey(keys)]++
			}
			for i, k := range keys {
				if !seen[i][k] {
					seen[i][k] = true
					distinct[i] = append(distinct[i], k)
				}
			}
		}
	}

	groups := make([][]string, 0, len(total.order))
	if opt.Expand && len(dims) > 0 {
		groups = cartesian(distinct)
	} else {
		for _, k := range total.order {
			groups = append(groups, total.keys[k])
		}
	}

	t := &Table{
		Name:       fmt.Sprintf("share of %q by %s", opt.Outcome, dimNames(dims)),
		Dimensions: append([]Dimension(nil), dims...),
		Measures:   []string{MeasureTotal, MeasureUnsolved, MeasureUnsolvedRate},
	}
	for _, keys := range groups {
		k := joinKey(keys)
		n, m := total.counts[k], matched[k]
		rate := 0.0
		if n > 0 {
			rate = m / n * 100
		}
		t.Rows = append(t.Rows, Row{Keys: keys, Values: []float64{n, m, rate}})
	}
	return t
}

func cartesian(sets [][]string) [][]string {
	out := [][]string{{}}
	for _, set := range sets {
		next := make([][]string, 0, len(out)*len(set))
		for _, prefix := range out {
			for _, v := range set {
				next = append(next, append(append([]string(nil), prefix...), v))
			}
		}
		out = next
	}
	return out
}
