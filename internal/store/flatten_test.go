package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saleslens/domain/table"
	"saleslens/internal/quality"
)

func intCol(name string, values ...int64) table.Column {
	cells := make([]table.Value, len(values))
	for i, v := range values {
		cells[i] = table.Int(v)
	}
	return table.Column{Name: name, Type: table.TypeInt, Values: cells}
}

func floatCol(name string, values ...float64) table.Column {
	cells := make([]table.Value, len(values))
	for i, v := range values {
		cells[i] = table.Float(v)
	}
	return table.Column{Name: name, Type: table.TypeFloat, Values: cells}
}

func strCol(name string, values ...string) table.Column {
	cells := make([]table.Value, len(values))
	for i, v := range values {
		cells[i] = table.String(v)
	}
	return table.Column{Name: name, Type: table.TypeString, Values: cells}
}

// seedStarSchema saves a four-order fact table plus the dimensions the
// flatten join needs. Orders one and two are identical apart from their
// order key, which the flattened view drops.
func seedStarSchema(t *testing.T, st *Store) {
	t.Helper()
	ctx := context.Background()

	fact := mustTable(t,
		intCol("ORDERKEY", 1001, 1002, 1003, 1004),
		intCol("ORDERLINENUMBER", 1, 1, 1, 2),
		intCol("CUSTOMERKEY", 1, 1, 2, 2),
		intCol("PRODUCTKEY", 1, 1, 2, 2),
		intCol("SALESTERRITORYKEY", 1, 1, 1, 1),
		intCol("CHANNELKEY", 1, 1, 2, 2),
		intCol("PAYMENTMETHODKEY", 1, 1, 1, 1),
		intCol("DELIVERYMETHODKEY", 1, 1, 1, 1),
		intCol("ORDERDATEKEY", 20240101, 20240101, 20240102, 20240103),
		intCol("SHIPDATEKEY", 20240103, 20240103, 20240104, 20240105),
		intCol("QUANTITY", 2, 2, 1, 3),
		floatCol("CATALOGPRICE", 100, 100, 50, 80),
		floatCol("DISCOUNTAMOUNT", 10, 10, 0, 8),
		floatCol("DISCOUNTPCTG", 10, 10, 0, 10),
		floatCol("TRANSACTIONPRICE", 90, 90, 50, 72),
		floatCol("DELIVERYCOST", 9.9, 9.9, 5, 7.5),
		floatCol("PRODUCTCOST", 60, 60, 30, 48),
	)
	require.NoError(t, st.SaveTable(ctx, "FactOnlineSales", fact))

	require.NoError(t, st.SaveTable(ctx, "DimProduct", mustTable(t,
		intCol("ProductKey", 1, 2),
		strCol("ProductName", "Laptop", "Kettle"),
		strCol("ProductSubcategoryName", "Laptops", "Kitchen"),
		strCol("ProductCategoryName", "Electronics", "Home"),
	)))
	require.NoError(t, st.SaveTable(ctx, "DimCustomer", mustTable(t,
		intCol("CUSTOMERKEY", 1, 2),
		strCol("FIRSTNAME", "Anna", "Jan"),
		strCol("LASTNAME", "Nowak", "Kowalski"),
	)))
	require.NoError(t, st.SaveTable(ctx, "DimOrderChannel", mustTable(t,
		intCol("ChannelKey", 1, 2),
		strCol("ChannelName", "Web", "Mobile App"),
	)))
	require.NoError(t, st.SaveTable(ctx, "DimPaymentMethod", mustTable(t,
		intCol("PaymentMethodKey", 1),
		strCol("PaymentMethodName", "Credit Card"),
	)))
	require.NoError(t, st.SaveTable(ctx, "DimDeliveryMethod", mustTable(t,
		intCol("DeliveryMethodKey", 1),
		strCol("DeliveryMethodName", "Courier"),
	)))
	require.NoError(t, st.SaveTable(ctx, "DimSalesterritory", mustTable(t,
		intCol("SALESTERRITORYKEY", 1),
		strCol("COUNTRYNAME", "Poland"),
	)))
}

func TestFlatten(t *testing.T) {
	st := openTestStore(t)
	seedStarSchema(t, st)

	flat, err := st.Flatten(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, flat.NumRows(), "flattened row count must equal the fact table's")

	for _, name := range flat.ColumnNames() {
		assert.NotContains(t, strings.ToLower(name), "key", "key columns must be dropped")
	}
	for _, dropped := range []string{"QUANTITY", "CATALOGPRICE", "DISCOUNTAMOUNT", "TRANSACTIONPRICE"} {
		_, ok := flat.ColumnFold(dropped)
		assert.False(t, ok, "raw column %s must be dropped", dropped)
	}

	// Derived totals for the first order: price * quantity
	totals, ok := flat.Column("TotalCatalogPrice")
	require.True(t, ok)
	assert.Equal(t, 200.0, totals.Values[0].Num)

	txTotals, ok := flat.Column("TotalTransactionPrice")
	require.True(t, ok)
	assert.Equal(t, 180.0, txTotals.Values[0].Num)
	assert.Equal(t, 50.0, txTotals.Values[2].Num)
	assert.Equal(t, 216.0, txTotals.Values[3].Num)

	// Joined dimension attributes
	customer, ok := flat.Column("CustomerName")
	require.True(t, ok)
	assert.Equal(t, "Anna Nowak", customer.Values[0].Str)
	assert.Equal(t, "Jan Kowalski", customer.Values[2].Str)

	product, ok := flat.Column("ProductName")
	require.True(t, ok)
	assert.Equal(t, "Laptop", product.Values[0].Str)

	country, ok := flat.Column("COUNTRYNAME")
	require.True(t, ok)
	assert.Equal(t, "Poland", country.Values[0].Str)
}

func TestFlattenCollapsesOrderIdentity(t *testing.T) {
	// Two fact rows differing only in their order key become exact duplicates
	// once the key columns are dropped
	st := openTestStore(t)
	seedStarSchema(t, st)

	flat, err := st.Flatten(context.Background())
	require.NoError(t, err)

	report := quality.NewAnalyzer(flat, nil).DuplicateRows()
	assert.Equal(t, 1, report.Count)
	assert.InDelta(t, 25.0, report.Percent, 1e-9)
}

func TestFlattenUnmatchedDimensionYieldsNulls(t *testing.T) {
	st := openTestStore(t)
	seedStarSchema(t, st)
	ctx := context.Background()

	// Replace the product dimension with one that misses key 2
	require.NoError(t, st.SaveTable(ctx, "DimProduct", mustTable(t,
		intCol("ProductKey", 1),
		strCol("ProductName", "Laptop"),
		strCol("ProductSubcategoryName", "Laptops"),
		strCol("ProductCategoryName", "Electronics"),
	)))

	flat, err := st.Flatten(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, flat.NumRows(), "left join must not drop fact rows")

	product, ok := flat.Column("ProductName")
	require.True(t, ok)
	assert.True(t, product.Values[2].Missing, "unmatched joins must yield nulls")
}
