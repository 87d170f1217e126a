package linkgroup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("dataset lifecycle", func(t *testing.T) {
		r, err := NewRegistry(nil)
		require.NoError(t, err)

		d := carsDataset(t)
		require.NoError(t, r.AddDataset(d))
		require.ErrorIs(t, r.AddDataset(d), ErrDuplicateDataset)

		got, err := r.Dataset("cars")
		require.NoError(t, err)
		require.Same(t, d, got)

		_, err = r.Dataset("trucks")
		require.ErrorIs(t, err, ErrUnknownDataset)

		require.Equal(t, []string{"cars"}, r.DatasetNames())
	})

	t.Run("group lifecycle", func(t *testing.T) {
		r, err := NewRegistry(nil)
		require.NoError(t, err)
		require.NoError(t, r.AddDataset(carsDataset(t)))

		g, err := r.CreateGroup("cars", "g1")
		require.NoError(t, err)
		require.Equal(t, "g1", g.ID())

		got, err := r.Group("g1")
		require.NoError(t, err)
		require.Same(t, g, got)

		_, err = r.CreateGroup("trucks", "g2")
		require.ErrorIs(t, err, ErrUnknownDataset)

		_, err = r.CreateGroup("cars", "g1")
		require.Error(t, err)

		require.NoError(t, r.RemoveGroup("g1"))
		_, err = r.Group("g1")
		require.ErrorIs(t, err, ErrUnknownGroup)
		require.ErrorIs(t, g.Close(), ErrGroupClosed)
	})

	t.Run("stop closes every group", func(t *testing.T) {
		r, err := NewRegistry(nil)
		require.NoError(t, err)
		require.NoError(t, r.AddDataset(carsDataset(t)))

		g, err := r.CreateGroup("cars", "g1")
		require.NoError(t, err)

		require.NoError(t, r.Stop())
		require.ErrorIs(t, g.Attach(&recorder{id: "v1"}), ErrGroupClosed)
	})

	t.Run("dependency name", func(t *testing.T) {
		r, err := NewRegistry(nil)
		require.NoError(t, err)
		require.Equal(t, "Link Group Registry", r.Name())
		require.NoError(t, r.Start())
	})
}
