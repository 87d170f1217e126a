package dataset

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	return db
}

func writeSampleDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cars.db")
	db := openTestDB(t, path)
	_, err := db.Exec(`CREATE TABLE cars (model TEXT, cyl INTEGER, mpg REAL, origin TEXT, released DATETIME)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cars VALUES
		('A', 4, 30.5, 'us', '2020-01-15 00:00:00'),
		('B', 6, 21.2, 'jp', '2019-06-01 00:00:00'),
		('C', 4, 28.9, 'us', '2021-03-20 00:00:00')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

func TestLoadSQLite(t *testing.T) {
	t.Parallel()

	path := writeSampleDB(t)

	t.Run("loads table with key column", func(t *testing.T) {
		d, err := LoadSQLite(path, "cars", &SQLiteOptions{KeyColumn: "model"})
		require.NoError(t, err)

		require.Equal(t, "cars", d.Name())
		require.Equal(t, 3, d.RowCount())
		require.Equal(t, []Key{"A", "B", "C"}, d.Keys())

		cyl, err := d.Floats("cyl")
		require.NoError(t, err)
		require.Equal(t, []float64{4, 6, 4}, cyl)
	})

	t.Run("maps column types", func(t *testing.T) {
		d, err := LoadSQLite(path, "cars", &SQLiteOptions{KeyColumn: "model"})
		require.NoError(t, err)

		typ, err := d.ColumnType("model")
		require.NoError(t, err)
		require.Equal(t, KeyColumn, typ)

		typ, err = d.ColumnType("cyl")
		require.NoError(t, err)
		require.Equal(t, Numeric, typ)

		typ, err = d.ColumnType("mpg")
		require.NoError(t, err)
		require.Equal(t, Numeric, typ)

		typ, err = d.ColumnType("origin")
		require.NoError(t, err)
		require.Equal(t, Categorical, typ)

		typ, err = d.ColumnType("released")
		require.NoError(t, err)
		require.Equal(t, Datetime, typ)

		released, err := d.Times("released")
		require.NoError(t, err)
		require.Equal(t, 2020, released[0].Year())
	})

	t.Run("name override", func(t *testing.T) {
		d, err := LoadSQLite(path, "cars", &SQLiteOptions{Name: "vehicles"})
		require.NoError(t, err)
		require.Equal(t, "vehicles", d.Name())
	})

	t.Run("index keys without key column", func(t *testing.T) {
		d, err := LoadSQLite(path, "cars", nil)
		require.NoError(t, err)
		require.Equal(t, []Key{"0", "1", "2"}, d.Keys())
	})

	t.Run("key column absent from table", func(t *testing.T) {
		_, err := LoadSQLite(path, "cars", &SQLiteOptions{KeyColumn: "vin"})
		require.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("invalid table name", func(t *testing.T) {
		_, err := LoadSQLite(path, "cars; DROP TABLE cars", nil)
		require.Error(t, err)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := LoadSQLite(path, "trucks", nil)
		require.Error(t, err)
	})

	t.Run("duplicate keys rejected", func(t *testing.T) {
		dupPath := filepath.Join(t.TempDir(), "dup.db")
		db := openTestDB(t, dupPath)
		_, err := db.Exec(`CREATE TABLE rows (id TEXT, v INTEGER)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO rows VALUES ('x', 1), ('x', 2)`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = LoadSQLite(dupPath, "rows", &SQLiteOptions{KeyColumn: "id"})
		require.ErrorIs(t, err, ErrDuplicateKey)
	})
}
