package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizlink/vizlink/internal/dataset"
	"github.com/vizlink/vizlink/internal/linkgroup"
	"github.com/vizlink/vizlink/internal/selection"
)

func carsDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.NewBuilder("cars").
		Key("model", []string{"A", "B", "C"}).
		Numeric("cyl", []float64{4, 6, 4}).
		Categorical("origin", []string{"us", "jp", "us"}).
		Build()
	require.NoError(t, err)
	return d
}

func newGroup(t *testing.T, d *dataset.Dataset) *linkgroup.Manager {
	t.Helper()
	g, err := linkgroup.New(&linkgroup.Config{ID: "g1", Dataset: d})
	require.NoError(t, err)
	return g
}

func visible(t *testing.T, g *linkgroup.Manager, d *dataset.Dataset) []dataset.Key {
	t.Helper()
	sn := g.Snapshot()
	var out []dataset.Key
	for _, k := range d.Keys() {
		if sn.VisibleKey(k) {
			out = append(out, k)
		}
	}
	return out
}

func TestCheckbox(t *testing.T) {
	t.Parallel()
	d := carsDataset(t)

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewCheckbox(&CheckboxConfig{})
		require.Error(t, err)
	})

	t.Run("unknown column", func(t *testing.T) {
		g := newGroup(t, d)
		_, err := NewCheckbox(&CheckboxConfig{Column: "gears", Dataset: d, Group: g})
		require.Error(t, err)
	})

	t.Run("options derived from column levels", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewCheckbox(&CheckboxConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)
		require.Equal(t, []string{"us", "jp"}, w.Options())
	})

	t.Run("checked values filter by membership", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewCheckbox(&CheckboxConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetChecked([]string{"us"}))
		require.Equal(t, []dataset.Key{"A", "C"}, visible(t, g, d))
	})

	t.Run("unchecking everything removes the filter", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewCheckbox(&CheckboxConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetChecked([]string{"jp"}))
		require.NoError(t, w.SetChecked(nil))
		require.Equal(t, []dataset.Key{"A", "B", "C"}, visible(t, g, d))
	})

	t.Run("widget observes selection changes", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewCheckbox(&CheckboxConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetChecked([]string{"us"}))
		require.Equal(t, g.Version(), w.LastVersion())
	})
}

func TestSlider(t *testing.T) {
	t.Parallel()
	d := carsDataset(t)

	t.Run("bounds come from the column summary", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSlider(&SliderConfig{ID: "w1", Column: "cyl", Dataset: d, Group: g})
		require.NoError(t, err)

		assert.Equal(t, 4.0, w.Min)
		assert.Equal(t, 6.0, w.Max)
	})

	t.Run("categorical column rejected", func(t *testing.T) {
		g := newGroup(t, d)
		_, err := NewSlider(&SliderConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.ErrorIs(t, err, dataset.ErrTypeMismatch)
	})

	t.Run("range filters the closed interval", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSlider(&SliderConfig{ID: "w1", Column: "cyl", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetRange(4, 4))
		require.Equal(t, []dataset.Key{"A", "C"}, visible(t, g, d))
	})

	t.Run("inverted range rejected, prior filter kept", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSlider(&SliderConfig{ID: "w1", Column: "cyl", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetRange(4, 4))
		err = w.SetRange(6, 4)
		require.ErrorIs(t, err, selection.ErrInvalidPredicate)

		require.Equal(t, []dataset.Key{"A", "C"}, visible(t, g, d))
		lo, hi := w.Range()
		assert.Equal(t, 4.0, lo)
		assert.Equal(t, 4.0, hi)
	})

	t.Run("reset restores the full extent", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSlider(&SliderConfig{ID: "w1", Column: "cyl", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetRange(6, 6))
		require.NoError(t, w.ResetRange())

		require.Equal(t, []dataset.Key{"A", "B", "C"}, visible(t, g, d))
		lo, hi := w.Range()
		assert.Equal(t, w.Min, lo)
		assert.Equal(t, w.Max, hi)
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()
	d := carsDataset(t)

	t.Run("equality filter", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSelect(&SelectConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetValue("jp"))
		require.Equal(t, []dataset.Key{"B"}, visible(t, g, d))
		require.Equal(t, "jp", w.Value())
	})

	t.Run("empty value removes the filter", func(t *testing.T) {
		g := newGroup(t, d)
		w, err := NewSelect(&SelectConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
		require.NoError(t, err)

		require.NoError(t, w.SetValue("jp"))
		require.NoError(t, w.SetValue(""))
		require.Equal(t, []dataset.Key{"A", "B", "C"}, visible(t, g, d))
	})
}

func TestWidgetsCompose(t *testing.T) {
	t.Parallel()
	d := carsDataset(t)
	g := newGroup(t, d)

	cb, err := NewCheckbox(&CheckboxConfig{ID: "w1", Column: "origin", Dataset: d, Group: g})
	require.NoError(t, err)
	sl, err := NewSlider(&SliderConfig{ID: "w2", Column: "cyl", Dataset: d, Group: g})
	require.NoError(t, err)

	require.NoError(t, cb.SetChecked([]string{"us", "jp"}))
	require.NoError(t, sl.SetRange(5, 7))

	// AND across widgets: origin in {us,jp} AND cyl in [5,7].
	require.Equal(t, []dataset.Key{"B"}, visible(t, g, d))
}
