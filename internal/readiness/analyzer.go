package readiness

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"saleslens/domain/table"
)

// MaxBalanceClasses is the distinct-value ceiling above which class-balance
// analysis is judged not applicable
const MaxBalanceClasses = 20

// DefaultCorrelationThreshold is the minimum |r| reported as an insight
const DefaultCorrelationThreshold = 0.75

// Analyzer computes classification-readiness diagnostics over the analysis
// table, optionally against a designated target column
type Analyzer struct {
	tbl    *table.Table
	target string
}

// NewAnalyzer creates an analyzer. target may be empty when no classification
// label has been chosen yet.
func NewAnalyzer(tbl *table.Table, target string) *Analyzer {
	return &Analyzer{tbl: tbl, target: target}
}

// ClassBalance returns the normalized class frequencies of the target column.
// It is not applicable when no target is set, the target is absent, or the
// target has more than MaxBalanceClasses distinct values.
func (a *Analyzer) ClassBalance() ClassBalance {
	if a.target == "" {
		return ClassBalance{}
	}
	col, ok := a.tbl.Column(a.target)
	if !ok || col.UniqueCount() > MaxBalanceClasses {
		return ClassBalance{}
	}

	counts := make(map[string]int)
	total := 0
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		counts[v.Display()]++
		total++
	}
	if total == 0 {
		return ClassBalance{}
	}

	balance := make(map[string]float64, len(counts))
	for class, count := range counts {
		balance[class] = float64(count) / float64(total)
	}
	return ClassBalance{Applicable: true, Frequencies: balance}
}

// MetadataQuality reports storage type, null count and distinct-value count
// per column
func (a *Analyzer) MetadataQuality() []ColumnMetadata {
	out := make([]ColumnMetadata, 0, a.tbl.NumCols())
	for _, col := range a.tbl.Columns() {
		out = append(out, ColumnMetadata{
			Column:       col.Name,
			Type:         string(col.Type),
			NullCount:    col.NullCount(),
			UniqueValues: col.UniqueCount(),
		})
	}
	return out
}

// Representativeness returns descriptive statistics plus skewness for every
// numeric column. ok is false when the table has no numeric data.
func (a *Analyzer) Representativeness() (summaries []NumericSummary, ok bool) {
	numeric := a.tbl.NumericColumns()
	if len(numeric) == 0 {
		return nil, false
	}
	for _, col := range numeric {
		values := col.Floats()
		summary := NumericSummary{Column: col.Name, Count: len(values)}
		if len(values) > 0 {
			sorted := make([]float64, len(values))
			copy(sorted, values)
			sort.Float64s(sorted)

			summary.Mean, _ = stats.Mean(values)
			if len(values) > 1 {
				summary.Std, _ = stats.StandardDeviationSample(values)
			}
			summary.Min = sorted[0]
			summary.Max = sorted[len(sorted)-1]
			summary.Q25 = quantile(sorted, 0.25)
			summary.Median = quantile(sorted, 0.5)
			summary.Q75 = quantile(sorted, 0.75)
			if len(values) > 2 {
				summary.Skewness = stat.Skew(values, nil)
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, true
}

// quantile linearly interpolates the p-th quantile of sorted values between
// the order statistics at floor and ceil of h = (n-1)p, so the median of an
// even-length sample is the mean of the two middle values.
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

// CorrelationInsights returns every unordered pair of numeric columns whose
// absolute Pearson correlation meets the threshold. Correlations use
// pairwise-complete observations.
func (a *Analyzer) CorrelationInsights(threshold float64) []CorrelationPair {
	if threshold <= 0 {
		threshold = DefaultCorrelationThreshold
	}
	numeric := a.tbl.NumericColumns()

	var pairs []CorrelationPair
	for i := 1; i < len(numeric); i++ {
		for j := 0; j < i; j++ {
			r, ok := pairwiseCorrelation(numeric[i], numeric[j])
			if !ok {
				continue
			}
			if abs(r) >= threshold {
				pairs = append(pairs, CorrelationPair{
					ColumnA: numeric[i].Name,
					ColumnB: numeric[j].Name,
					Value:   r,
				})
			}
		}
	}
	return pairs
}

// pairwiseCorrelation computes Pearson r over rows where both cells are
// present. ok is false when fewer than two complete pairs exist or either
// side has zero variance.
func pairwiseCorrelation(a, b *table.Column) (float64, bool) {
	var xs, ys []float64
	for i := range a.Values {
		va, vb := a.Values[i], b.Values[i]
		if va.Missing || vb.Missing {
			continue
		}
		xs = append(xs, va.Num)
		ys = append(ys, vb.Num)
	}
	if len(xs) < 2 {
		return 0, false
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, false
	}
	return stat.Correlation(xs, ys, nil), true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
