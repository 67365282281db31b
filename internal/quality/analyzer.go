package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"saleslens/domain/table"
	"saleslens/internal/errors"
)

// OutlierMethod selects the outlier-flagging policy
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"

	// DefaultZScoreThreshold is the absolute standard score above which a
	// value is flagged by the z-score policy
	DefaultZScoreThreshold = 3.0

	// DefaultBins is the histogram bin count for distribution analysis
	DefaultBins = 20
)

// Analyzer computes data-quality metrics over a single analysis table
type Analyzer struct {
	tbl      *table.Table
	expected map[string]table.ValueType
}

// NewAnalyzer creates an analyzer. expected maps column names to the logical
// type they are supposed to carry; it may be nil.
func NewAnalyzer(tbl *table.Table, expected map[string]table.ValueType) *Analyzer {
	return &Analyzer{tbl: tbl, expected: expected}
}

// MissingValues reports the percentage of null cells per column and overall
func (a *Analyzer) MissingValues() MissingReport {
	report := MissingReport{PerColumn: make(map[string]float64)}
	totalNulls := 0
	for _, col := range a.tbl.Columns() {
		nulls := col.NullCount()
		totalNulls += nulls
		pct := 0.0
		if rows := a.tbl.NumRows(); rows > 0 {
			pct = float64(nulls) / float64(rows) * 100
		}
		report.PerColumn[col.Name] = pct
	}
	if size := a.tbl.NumRows() * a.tbl.NumCols(); size > 0 {
		report.TotalPercent = float64(totalNulls) / float64(size) * 100
	}
	return report
}

// DuplicateRows counts rows that exactly match an earlier row
func (a *Analyzer) DuplicateRows() DuplicateReport {
	seen := make(map[string]struct{}, a.tbl.NumRows())
	duplicates := 0
	for i := 0; i < a.tbl.NumRows(); i++ {
		key := a.tbl.RowKey(i)
		if _, ok := seen[key]; ok {
			duplicates++
		} else {
			seen[key] = struct{}{}
		}
	}
	report := DuplicateReport{Count: duplicates}
	if rows := a.tbl.NumRows(); rows > 0 {
		report.Percent = float64(duplicates) / float64(rows) * 100
	}
	return report
}

// Outliers flags outliers per numeric column using the requested policy.
// Columns with no non-null values are skipped entirely.
func (a *Analyzer) Outliers(method OutlierMethod, zThreshold float64) (OutlierReport, error) {
	if method != MethodIQR && method != MethodZScore {
		return OutlierReport{}, errors.InvalidArgument(fmt.Sprintf("invalid outlier detection method %q", method))
	}
	if zThreshold <= 0 {
		zThreshold = DefaultZScoreThreshold
	}

	report := OutlierReport{Method: method, PerColumn: make(map[string]ColumnOutliers)}
	totalOutliers, totalValues := 0, 0

	for _, col := range a.tbl.NumericColumns() {
		values := col.Floats()
		n := len(values)
		if n == 0 {
			continue
		}

		var count int
		if method == MethodIQR {
			count = countIQROutliers(values)
		} else {
			count = countZScoreOutliers(values, zThreshold)
		}

		report.PerColumn[col.Name] = ColumnOutliers{
			Count:   count,
			Percent: float64(count) / float64(n) * 100,
		}
		totalOutliers += count
		totalValues += n
	}

	if totalValues > 0 {
		report.TotalPercent = float64(totalOutliers) / float64(totalValues) * 100
	}
	return report, nil
}

// countIQROutliers flags values strictly outside the 1.5*IQR fences
func countIQROutliers(values []float64) int {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

// quantile linearly interpolates the p-th quantile of sorted values between
// the order statistics at floor and ceil of h = (n-1)p. This is the common
// spreadsheet convention; the median of an even-length sample is the mean of
// the two middle values.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// countZScoreOutliers flags values whose absolute standard score exceeds the
// threshold. The score uses the population standard deviation.
func countZScoreOutliers(values []float64, threshold float64) int {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil || std == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if math.Abs((v-mean)/std) > threshold {
			count++
		}
	}
	return count
}

// TypeConformance compares each declared expected type against the column's
// storage type. Missing columns always report non-conformance.
func (a *Analyzer) TypeConformance() map[string]TypeConformanceEntry {
	results := make(map[string]TypeConformanceEntry)
	for name, expected := range a.expected {
		entry := TypeConformanceEntry{Expected: string(expected)}
		if col, ok := a.tbl.Column(name); ok {
			actual := string(col.Type)
			entry.Actual = &actual
			entry.Match = conforms(col.Type, expected)
		}
		results[name] = entry
	}
	return results
}

// conforms checks storage-type membership in the expected type family
func conforms(actual, expected table.ValueType) bool {
	switch expected {
	case table.TypeInt:
		return actual == table.TypeInt
	case table.TypeFloat:
		return actual == table.TypeFloat
	default:
		return actual == expected
	}
}

// Distributions builds a fixed-bin histogram plus summary statistics for each
// float column
func (a *Analyzer) Distributions(bins int) map[string]Distribution {
	if bins <= 0 {
		bins = DefaultBins
	}
	out := make(map[string]Distribution)
	for _, col := range a.tbl.FloatColumns() {
		out[col.Name] = describeDistribution(col.Floats(), bins)
	}
	return out
}

func describeDistribution(values []float64, bins int) Distribution {
	d := Distribution{}
	if len(values) == 0 {
		d.Counts = make([]int, bins)
		d.BinEdges = binEdges(0, 1, bins)
		return d
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	lo, hi := min, max
	if lo == hi {
		// Degenerate range: widen so every value lands in a bin
		lo -= 0.5
		hi += 0.5
	}
	d.BinEdges = binEdges(lo, hi, bins)
	d.Counts = make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		d.Counts[idx]++
	}

	d.Min = &min
	d.Max = &max
	d.Mean = &mean
	d.Median = &median
	d.Skewness = populationSkewness(values)
	return d
}

func binEdges(lo, hi float64, bins int) []float64 {
	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	return edges
}

// populationSkewness computes the third standardized moment g1 = m3 / m2^1.5
// without bias correction
func populationSkewness(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	mean, _ := stats.Mean(values)
	var m2, m3 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// BasicStats returns a descriptive-statistics row per column, each prefixed
// with the column's storage type
func (a *Analyzer) BasicStats() []ColumnStats {
	out := make([]ColumnStats, 0, a.tbl.NumCols())
	for _, col := range a.tbl.Columns() {
		cs := ColumnStats{
			Column: col.Name,
			Type:   string(col.Type),
			Count:  len(col.Values) - col.NullCount(),
			Unique: col.UniqueCount(),
		}
		if col.Type.IsNumeric() {
			values := col.Floats()
			if len(values) > 0 {
				sorted := make([]float64, len(values))
				copy(sorted, values)
				sort.Float64s(sorted)

				mean, _ := stats.Mean(values)
				// Sample std, matching descriptive-stats convention
				std := 0.0
				if len(values) > 1 {
					std, _ = stats.StandardDeviationSample(values)
				}
				q25 := quantile(sorted, 0.25)
				median := quantile(sorted, 0.5)
				q75 := quantile(sorted, 0.75)
				min := sorted[0]
				max := sorted[len(sorted)-1]

				cs.Mean = &mean
				cs.Std = &std
				cs.Min = &min
				cs.Q25 = &q25
				cs.Median = &median
				cs.Q75 = &q75
				cs.Max = &max
			}
		}
		out = append(out, cs)
	}
	return out
}

// GenerateReport aggregates every quality check into one report. Any
// sub-check error propagates unchanged.
func (a *Analyzer) GenerateReport(method OutlierMethod, zThreshold float64, bins int) (*Report, error) {
	if method == "" {
		method = MethodIQR
	}
	outliers, err := a.Outliers(method, zThreshold)
	if err != nil {
		return nil, err
	}
	return &Report{
		MissingValues:   a.MissingValues(),
		Duplicates:      a.DuplicateRows(),
		Outliers:        outliers,
		TypeConformance: a.TypeConformance(),
		BasicStats:      a.BasicStats(),
		Distributions:   a.Distributions(bins),
	}, nil
}
