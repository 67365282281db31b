package store

import (
	"context"
	"strings"

	"saleslens/domain/table"
	"saleslens/internal/errors"
)

// flattenQuery joins the fact table against the dimension tables and derives
// the three per-line total columns. The result is read-only and never
// persisted back.
const flattenQuery = `
SELECT
  F.*,
  (F.CATALOGPRICE * F.QUANTITY) AS TotalCatalogPrice,
  (F.DISCOUNTAMOUNT * F.QUANTITY) AS TotalDiscountAmount,
  (F.TRANSACTIONPRICE * F.QUANTITY) AS TotalTransactionPrice,
  P.ProductName,
  P.ProductSubcategoryName,
  P.ProductCategoryName,
  C.FIRSTNAME || ' ' || C.LASTNAME AS CustomerName,
  D.ChannelName,
  PM.PaymentMethodName,
  DM.DeliveryMethodName,
  ST.COUNTRYNAME
FROM FactOnlineSales F
LEFT JOIN DimProduct P ON F.PRODUCTKEY = P.ProductKey
LEFT JOIN DimCustomer C ON F.CUSTOMERKEY = C.CUSTOMERKEY
LEFT JOIN DimOrderChannel D ON F.CHANNELKEY = D.ChannelKey
LEFT JOIN DimPaymentMethod PM ON F.PAYMENTMETHODKEY = PM.PaymentMethodKey
LEFT JOIN DimDeliveryMethod DM ON F.DELIVERYMETHODKEY = DM.DeliveryMethodKey
LEFT JOIN DimSalesterritory ST ON F.SALESTERRITORYKEY = ST.SALESTERRITORYKEY`

// Columns dropped from the flattened view after the join: the raw per-unit
// amounts survive only through the derived totals
var droppedRawColumns = []string{"CATALOGPRICE", "DISCOUNTAMOUNT", "TRANSACTIONPRICE", "QUANTITY"}

// Flatten produces the denormalized analysis table: the fact table left-joined
// to each dimension, derived totals added, then every key column and the raw
// price/quantity columns dropped. Row count equals the fact table's.
func (s *Store) Flatten(ctx context.Context) (*table.Table, error) {
	joined, err := s.queryTable(ctx, flattenQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build flattened view")
	}

	out := table.New()
	for _, col := range joined.Columns() {
		if isDroppedColumn(col.Name) {
			continue
		}
		if err := out.AddColumn(col); err != nil {
			return nil, errors.Wrap(err, "failed to assemble flattened table")
		}
	}
	s.logger.Info("flattened analysis table ready (%d rows, %d columns)", out.NumRows(), out.NumCols())
	return out, nil
}

func isDroppedColumn(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "key") {
		return true
	}
	for _, raw := range droppedRawColumns {
		if strings.EqualFold(name, raw) {
			return true
		}
	}
	return false
}
