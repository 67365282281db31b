package quality

import (
	"math"
	"testing"

	"saleslens/domain/table"
	"saleslens/internal/errors"
)

func buildTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tbl := table.New()
	for _, c := range cols {
		if err := tbl.AddColumn(c); err != nil {
			t.Fatalf("building fixture table: %v", err)
		}
	}
	return tbl
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMissingValues(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(1), table.Null(), table.Int(3), table.Int(4)}},
		table.Column{Name: "B", Type: table.TypeString, Values: []table.Value{table.String("x"), table.String("y"), table.String("z"), table.String("w")}},
	)

	report := NewAnalyzer(tbl, nil).MissingValues()
	if !almostEqual(report.PerColumn["A"], 25.0) {
		t.Errorf("column A missing = %v, want 25", report.PerColumn["A"])
	}
	if !almostEqual(report.PerColumn["B"], 0.0) {
		t.Errorf("column B missing = %v, want 0", report.PerColumn["B"])
	}
	if !almostEqual(report.TotalPercent, 12.5) {
		t.Errorf("total missing = %v, want 12.5", report.TotalPercent)
	}
}

func TestDuplicateRows(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(1), table.Int(1), table.Int(2), table.Int(3)}},
		table.Column{Name: "B", Type: table.TypeString, Values: []table.Value{table.String("x"), table.String("x"), table.String("y"), table.String("z")}},
	)

	report := NewAnalyzer(tbl, nil).DuplicateRows()
	if report.Count != 1 {
		t.Errorf("duplicate count = %d, want 1", report.Count)
	}
	if !almostEqual(report.Percent, 25.0) {
		t.Errorf("duplicate percent = %v, want 25", report.Percent)
	}
}

func TestOutliersRejectsUnknownMethod(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "A", Type: table.TypeInt, Values: []table.Value{table.Int(1)}},
	)
	_, err := NewAnalyzer(tbl, nil).Outliers("mad", 0)
	if err == nil {
		t.Fatal("expected an error for an unknown method")
	}
	if !errors.HasCode(err, errors.CodeInvalidArgument) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeInvalidArgument)
	}
}

func TestOutliersFlagExtremeValue(t *testing.T) {
	// Enough baseline points that a single extreme clears the z-score
	// threshold: with n values the population z of one outlier approaches
	// sqrt(n-1), so n must be well above 10
	var values []table.Value
	for i := 0; i < 20; i++ {
		values = append(values, table.Float(float64(10+i%3)))
	}
	values = append(values, table.Float(1000))
	tbl := buildTable(t, table.Column{Name: "Price", Type: table.TypeFloat, Values: values})
	a := NewAnalyzer(tbl, nil)

	for _, method := range []OutlierMethod{MethodIQR, MethodZScore} {
		report, err := a.Outliers(method, DefaultZScoreThreshold)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if got := report.PerColumn["Price"].Count; got != 1 {
			t.Errorf("%s flagged %d outliers, want 1", method, got)
		}
		if !almostEqual(report.TotalPercent, 100.0/21.0) {
			t.Errorf("%s total percent = %v, want %v", method, report.TotalPercent, 100.0/21.0)
		}
	}
}

func TestOutliersConstantColumn(t *testing.T) {
	values := []table.Value{table.Float(5), table.Float(5), table.Float(5), table.Float(5)}
	tbl := buildTable(t, table.Column{Name: "C", Type: table.TypeFloat, Values: values})
	a := NewAnalyzer(tbl, nil)

	for _, method := range []OutlierMethod{MethodIQR, MethodZScore} {
		report, err := a.Outliers(method, DefaultZScoreThreshold)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if got := report.PerColumn["C"].Count; got != 0 {
			t.Errorf("%s flagged %d outliers on a constant column, want 0", method, got)
		}
	}
}

func TestOutliersSkipsEmptyColumn(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "Empty", Type: table.TypeFloat, Values: []table.Value{table.Null(), table.Null()}},
	)
	report, err := NewAnalyzer(tbl, nil).Outliers(MethodIQR, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.PerColumn["Empty"]; ok {
		t.Error("a column with no values should be skipped entirely")
	}
}

func TestTypeConformance(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "Qty", Type: table.TypeInt, Values: []table.Value{table.Int(1)}},
		table.Column{Name: "Price", Type: table.TypeFloat, Values: []table.Value{table.Float(1)}},
	)
	expected := map[string]table.ValueType{
		"Qty":    table.TypeInt,
		"Price":  table.TypeInt,
		"Absent": table.TypeString,
	}

	results := NewAnalyzer(tbl, expected).TypeConformance()
	if !results["Qty"].Match {
		t.Error("Qty should conform to the expected integer type")
	}
	if results["Price"].Match {
		t.Error("a float column must not conform to an expected integer type")
	}
	absent := results["Absent"]
	if absent.Match || absent.Actual != nil {
		t.Errorf("absent column should report no actual type and no match: %+v", absent)
	}
}

func TestDistributions(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "X", Type: table.TypeFloat, Values: []table.Value{
			table.Float(1), table.Float(2), table.Float(3), table.Float(4),
		}},
	)

	dists := NewAnalyzer(tbl, nil).Distributions(4)
	d, ok := dists["X"]
	if !ok {
		t.Fatal("missing distribution for column X")
	}
	if len(d.Counts) != 4 || len(d.BinEdges) != 5 {
		t.Fatalf("bins = %d, edges = %d; want 4 and 5", len(d.Counts), len(d.BinEdges))
	}
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	if total != 4 {
		t.Errorf("histogram counts sum to %d, want 4", total)
	}
	if d.Min == nil || *d.Min != 1 || d.Max == nil || *d.Max != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", d.Min, d.Max)
	}
	if d.Mean == nil || !almostEqual(*d.Mean, 2.5) {
		t.Errorf("mean = %v, want 2.5", d.Mean)
	}
	if !almostEqual(d.Skewness, 0) {
		t.Errorf("skewness of a symmetric sample = %v, want 0", d.Skewness)
	}
}

func TestDistributionsDegenerateRange(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "C", Type: table.TypeFloat, Values: []table.Value{table.Float(7), table.Float(7)}},
	)
	d := NewAnalyzer(tbl, nil).Distributions(10)["C"]
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	if total != 2 {
		t.Errorf("every value must land in a bin even when min == max, got %d of 2", total)
	}
	if d.BinEdges[0] >= 7 || d.BinEdges[len(d.BinEdges)-1] <= 7 {
		t.Errorf("widened edges should straddle the constant value: %v", d.BinEdges)
	}
}

func TestBasicStats(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "N", Type: table.TypeFloat, Values: []table.Value{
			table.Float(1), table.Float(2), table.Float(3), table.Float(4),
		}},
		table.Column{Name: "S", Type: table.TypeString, Values: []table.Value{
			table.String("a"), table.String("b"), table.String("a"), table.Null(),
		}},
	)

	stats := NewAnalyzer(tbl, nil).BasicStats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 stat rows, got %d", len(stats))
	}

	n := stats[0]
	if n.Column != "N" || n.Count != 4 || n.Unique != 4 {
		t.Errorf("unexpected numeric row: %+v", n)
	}
	if n.Mean == nil || !almostEqual(*n.Mean, 2.5) {
		t.Errorf("mean = %v, want 2.5", n.Mean)
	}
	if n.Std == nil || !almostEqual(*n.Std, math.Sqrt(5.0/3.0)) {
		t.Errorf("std = %v, want sample std %v", n.Std, math.Sqrt(5.0/3.0))
	}
	if n.Min == nil || *n.Min != 1 || n.Max == nil || *n.Max != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", n.Min, n.Max)
	}
	if n.Q25 == nil || n.Median == nil || n.Q75 == nil {
		t.Fatal("quantiles must be set for a numeric column")
	}
	// Even-length sample: linear interpolation between order statistics, so
	// the median averages the two middle values
	if !almostEqual(*n.Q25, 1.75) || !almostEqual(*n.Median, 2.5) || !almostEqual(*n.Q75, 3.25) {
		t.Errorf("quantiles = %v/%v/%v, want 1.75/2.5/3.25", *n.Q25, *n.Median, *n.Q75)
	}

	s := stats[1]
	if s.Column != "S" || s.Count != 3 || s.Unique != 2 {
		t.Errorf("unexpected text row: %+v", s)
	}
	if s.Mean != nil || s.Std != nil {
		t.Error("text columns must not carry numeric statistics")
	}
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := []struct{ p, want float64 }{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, c := range cases {
		if got := quantile(sorted, c.p); !almostEqual(got, c.want) {
			t.Errorf("quantile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	if got := quantile([]float64{7}, 0.5); got != 7 {
		t.Errorf("single-value quantile = %v, want 7", got)
	}
}

func TestGenerateReportDefaultsToIQR(t *testing.T) {
	tbl := buildTable(t,
		table.Column{Name: "A", Type: table.TypeFloat, Values: []table.Value{table.Float(1), table.Float(2)}},
	)
	report, err := NewAnalyzer(tbl, nil).GenerateReport("", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Outliers.Method != MethodIQR {
		t.Errorf("default method = %s, want %s", report.Outliers.Method, MethodIQR)
	}
	if len(report.Distributions["A"].Counts) != DefaultBins {
		t.Errorf("default bins = %d, want %d", len(report.Distributions["A"].Counts), DefaultBins)
	}
}
