package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saleslens/domain/table"
)

// openTestStore opens a throwaway on-disk database. A :memory: database would
// give every pooled connection its own empty schema.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tbl := table.New()
	for _, c := range cols {
		require.NoError(t, tbl.AddColumn(c))
	}
	return tbl
}

func TestSaveAndReadTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tbl := mustTable(t,
		table.Column{Name: "ID", Type: table.TypeInt, Values: []table.Value{table.Int(1), table.Int(2)}},
		table.Column{Name: "Price", Type: table.TypeFloat, Values: []table.Value{table.Float(9.5), table.Null()}},
		table.Column{Name: "Label", Type: table.TypeString, Values: []table.Value{table.String("a"), table.String("b")}},
	)
	require.NoError(t, st.SaveTable(ctx, "Sample", tbl))

	got, err := st.ReadTable(ctx, "Sample", 0)
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	require.Equal(t, 3, got.NumCols())

	id, ok := got.Column("ID")
	require.True(t, ok)
	assert.Equal(t, table.TypeInt, id.Type)
	assert.True(t, id.Values[0].Equal(table.Int(1)))

	price, ok := got.Column("Price")
	require.True(t, ok)
	assert.Equal(t, table.TypeFloat, price.Type)
	assert.Equal(t, 9.5, price.Values[0].Num)
	assert.True(t, price.Values[1].Missing, "null cells must survive the round trip")

	label, ok := got.Column("Label")
	require.True(t, ok)
	assert.Equal(t, table.TypeString, label.Type)
	assert.Equal(t, "a", label.Values[0].Str)
}

func TestSaveTableReplacesPreviousVersion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := mustTable(t, table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(1), table.Int(2)}})
	require.NoError(t, st.SaveTable(ctx, "T", first))

	second := mustTable(t, table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(9)}})
	require.NoError(t, st.SaveTable(ctx, "T", second))

	got, err := st.ReadTable(ctx, "T", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())
}

func TestSaveTableRejectsEmptyTable(t *testing.T) {
	st := openTestStore(t)
	err := st.SaveTable(context.Background(), "Empty", table.New())
	assert.Error(t, err)
}

func TestListTables(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tbl := mustTable(t, table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(1)}})
	require.NoError(t, st.SaveTable(ctx, "Zebra", tbl))
	require.NoError(t, st.SaveTable(ctx, "Alpha", tbl))

	names, err := st.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zebra"}, names)
}

func TestReadTableLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tbl := mustTable(t, table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{
		table.Int(1), table.Int(2), table.Int(3),
	}})
	require.NoError(t, st.SaveTable(ctx, "T", tbl))

	got, err := st.ReadTable(ctx, "T", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
}

func TestReadTableMixedNumericColumn(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// SQLite stores 1.0 in a REAL column but the driver can still hand back
	// integers from expressions; the reader promotes them to floats
	tbl := mustTable(t, table.Column{Name: "V", Type: table.TypeFloat, Values: []table.Value{
		table.Float(1), table.Float(2.5),
	}})
	require.NoError(t, st.SaveTable(ctx, "T", tbl))

	got, err := st.ReadTable(ctx, "T", 0)
	require.NoError(t, err)
	col, _ := got.Column("V")
	assert.Equal(t, table.TypeFloat, col.Type)
	for _, v := range col.Values {
		assert.Equal(t, table.TypeFloat, v.Type)
	}
}
