package quality

// MissingReport holds null-cell percentages
type MissingReport struct {
	PerColumn    map[string]float64 `json:"missing_per_column_pct"`
	TotalPercent float64            `json:"percent_missing_total"`
}

// DuplicateReport counts exact full-row duplicates
type DuplicateReport struct {
	Count   int     `json:"num_duplicates"`
	Percent float64 `json:"percent_duplicates"`
}

// ColumnOutliers summarizes outliers in a single numeric column
type ColumnOutliers struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// OutlierReport summarizes outliers across all numeric columns
type OutlierReport struct {
	Method       OutlierMethod             `json:"method"`
	PerColumn    map[string]ColumnOutliers `json:"outliers_per_column"`
	TotalPercent float64                   `json:"percent_outliers_total"`
}

// TypeConformanceEntry compares an expected logical type against the actual
// storage type. Actual is nil when the column is absent from the table.
type TypeConformanceEntry struct {
	Expected string  `json:"expected_type"`
	Actual   *string `json:"actual_type"`
	Match    bool    `json:"match"`
}

// Distribution is a fixed-bin histogram plus summary statistics for one
// float column. The stat pointers are nil when the column has no non-null
// values.
type Distribution struct {
	Counts   []int     `json:"counts"`
	BinEdges []float64 `json:"bin_edges"`
	Min      *float64  `json:"min"`
	Max      *float64  `json:"max"`
	Mean     *float64  `json:"mean"`
	Median   *float64  `json:"median"`
	Skewness float64   `json:"skewness"`
}

// ColumnStats is one row of the descriptive-statistics table. Numeric fields
// are nil for non-numeric columns.
type ColumnStats struct {
	Column string   `json:"column"`
	Type   string   `json:"type"`
	Count  int      `json:"count"`
	Unique int      `json:"unique"`
	Mean   *float64 `json:"mean,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Q25    *float64 `json:"q25,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Q75    *float64 `json:"q75,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Report aggregates every quality check over one analysis table
type Report struct {
	MissingValues   MissingReport                   `json:"missing_values"`
	Duplicates      DuplicateReport                 `json:"duplicates"`
	Outliers        OutlierReport                   `json:"outliers"`
	TypeConformance map[string]TypeConformanceEntry `json:"type_conformance"`
	BasicStats      []ColumnStats                   `json:"basic_stats"`
	Distributions   map[string]Distribution         `json:"distributions"`
}
