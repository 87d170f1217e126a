package selection

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vizlink/vizlink/internal/dataset"
)

// buildDataset creates an n-row dataset with a numeric and a categorical
// column derived from the row index, so predicates have something to bite.
func buildDataset(n int) *dataset.Dataset {
	keys := make([]string, n)
	nums := make([]float64, n)
	cats := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = "r" + strconv.Itoa(i)
		nums[i] = float64(i % 10)
		cats[i] = string(rune('a' + i%4))
	}
	d, err := dataset.NewBuilder("prop").
		Key("id", keys).
		Numeric("num", nums).
		Categorical("cat", cats).
		Build()
	if err != nil {
		panic(err)
	}
	return d
}

func equalKeySets(a, b dataset.KeySet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b.Has(k) {
			return false
		}
	}
	return true
}

func TestProperty_FilterIntersection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	d := buildDataset(40)

	// The effective filtered set equals the AND of each predicate
	// evaluated independently.
	properties.Property("effective set is the intersection of per-widget sets", prop.ForAll(
		func(lo, hi float64, vals []string) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			r := Range{Col: "num", Min: lo, Max: hi}
			m := Membership{Col: "cat", Values: vals}

			s := NewState(d)
			if err := s.ApplyPredicate("w1", r); err != nil {
				return false
			}
			if err := s.ApplyPredicate("w2", m); err != nil {
				return false
			}

			rk, _ := r.Eval(d)
			mk, _ := m.Eval(d)
			return equalKeySets(s.Snapshot().Visible, rk.Intersect(mk))
		},
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 10),
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "d", "e")),
	))

	// Filtering is commutative across widgets: application order does not
	// change the effective set.
	properties.Property("filter application order is irrelevant", prop.ForAll(
		func(lo, hi float64, vals []string) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			r := Range{Col: "num", Min: lo, Max: hi}
			m := Membership{Col: "cat", Values: vals}

			ab := NewState(d)
			_ = ab.ApplyPredicate("w1", r)
			_ = ab.ApplyPredicate("w2", m)

			ba := NewState(d)
			_ = ba.ApplyPredicate("w2", m)
			_ = ba.ApplyPredicate("w1", r)

			return equalKeySets(ab.Snapshot().Visible, ba.Snapshot().Visible)
		},
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 10),
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "d", "e")),
	))

	// A highlight never changes which rows pass the filters.
	properties.Property("highlight leaves the visible universe fixed", prop.ForAll(
		func(lo, hi float64, picks []int) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			s := NewState(d)
			if err := s.ApplyPredicate("w1", Range{Col: "num", Min: lo, Max: hi}); err != nil {
				return false
			}
			before := s.Snapshot().Visible

			keys := make([]dataset.Key, 0, len(picks))
			for _, p := range picks {
				keys = append(keys, dataset.Key("r"+strconv.Itoa(p%40)))
			}
			s.ApplyHighlight("view", keys)

			return equalKeySets(before, s.Snapshot().Visible)
		},
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 10),
		gen.SliceOf(gen.IntRange(0, 39)),
	))

	properties.TestingRun(t)
}
