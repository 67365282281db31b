package compliance

// LineageEntry records where a column of the analysis table comes from
type LineageEntry struct {
	Column     string `json:"column"`
	Source     string `json:"source"`
	Derivation string `json:"derivation"`
}

// Lineage pairs a source table with a derivation description
type Lineage struct {
	Source     string
	Derivation string
}

// UnknownLineage is the sentinel for columns absent from the lineage map
var UnknownLineage = Lineage{Source: "unknown", Derivation: "unknown"}

// Config carries the keyword vocabularies and lineage metadata the analyzer
// scores against. It is data, not logic: callers may supply their own to
// extend the mappings without touching the scoring.
type Config struct {
	// GroupColumns and TargetColumns are the defaults for bias analysis
	GroupColumns  []string
	TargetColumns []string

	// SensitiveKeywords mark special-category attributes; PersonalKeywords
	// mark direct identifiers. Matching is case-insensitive substring.
	SensitiveKeywords []string
	PersonalKeywords  []string

	// NameExceptions are column names that contain "name" but denote
	// non-personal business entities. Lower-case, matched exactly.
	NameExceptions []string

	// LineageMap maps column names (exact match) to their recorded origin
	LineageMap map[string]Lineage
}

// DefaultConfig returns the vocabularies and lineage metadata for the retail
// sales star schema
func DefaultConfig() Config {
	return Config{
		GroupColumns:  []string{"COUNTRYNAME", "ChannelName", "PaymentMethodName"},
		TargetColumns: []string{"TRANSACTIONPRICE", "DISCOUNTPCTG"},
		SensitiveKeywords: []string{
			"health", "gender", "religion", "ethnicity",
			"politics", "income", "disability", "sexual",
		},
		PersonalKeywords: []string{
			"name", "firstname", "lastname", "email", "phone",
			"address", "dob", "pesel", "nip", "user", "ip",
		},
		NameExceptions: []string{
			"productname", "paymentmethodname", "deliverymethodname",
			"channelname", "productsubcategoryname", "productcategoryname",
		},
		LineageMap: map[string]Lineage{
			// Original fact-table columns
			"ORDERKEY":         {Source: "FactOnlineSales", Derivation: "original"},
			"ORDERLINENUMBER":  {Source: "FactOnlineSales", Derivation: "original"},
			"TRANSACTIONPRICE": {Source: "FactOnlineSales", Derivation: "original"},
			"QUANTITY":         {Source: "FactOnlineSales", Derivation: "original"},
			"DISCOUNTPCTG":     {Source: "FactOnlineSales", Derivation: "original"},
			"DELIVERYCOST":     {Source: "FactOnlineSales", Derivation: "original"},
			"PRODUCTCOST":      {Source: "FactOnlineSales", Derivation: "original"},

			// Columns joined in from dimensions
			"CustomerName":           {Source: "DimCustomer", Derivation: "join via CustomerKey + transform (first + last name)"},
			"ProductName":            {Source: "DimProduct", Derivation: "join via ProductKey"},
			"ProductCategoryName":    {Source: "DimProduct", Derivation: "join via ProductKey"},
			"ProductSubcategoryName": {Source: "DimProduct", Derivation: "join via ProductKey"},
			"ChannelName":            {Source: "DimOrderChannel", Derivation: "join via ChannelKey"},
			"PaymentMethodName":      {Source: "DimPaymentMethod", Derivation: "join via PaymentMethodKey"},
			"DeliveryMethodName":     {Source: "DimDeliveryMethod", Derivation: "join via DeliveryMethodKey"},
			"COUNTRYNAME":            {Source: "DimSalesTerritory", Derivation: "join via SalesTerritoryKey"},

			// Derived columns
			"TotalTransactionPrice": {Source: "FactOnlineSales", Derivation: "derived (TransactionPrice x Quantity)"},
			"TotalDiscountAmount":   {Source: "FactOnlineSales", Derivation: "derived (DiscountAmount x Quantity)"},
			"TotalCatalogPrice":     {Source: "FactOnlineSales", Derivation: "derived (CatalogPrice x Quantity)"},
		},
	}
}
