package compliance

import (
	"fmt"
	"math"
	"strings"

	"saleslens/domain/table"
)

// RiskLevel is an ordinal risk label
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Analyzer computes AI-Act-style compliance metrics over the analysis table
type Analyzer struct {
	tbl *table.Table
	cfg Config
}

// NewAnalyzer creates an analyzer with the default vocabularies
func NewAnalyzer(tbl *table.Table) *Analyzer {
	return NewAnalyzerWithConfig(tbl, DefaultConfig())
}

// NewAnalyzerWithConfig creates an analyzer with caller-supplied vocabularies
// and lineage metadata
func NewAnalyzerWithConfig(tbl *table.Table, cfg Config) *Analyzer {
	return &Analyzer{tbl: tbl, cfg: cfg}
}

// AnalyzeBias computes categorical bias metrics for each grouping column
// present in the table. A failure analyzing one grouping column is isolated:
// its entry carries the error message and the remaining columns proceed.
// Nil slices fall back to the configured defaults.
func (a *Analyzer) AnalyzeBias(groupCols, targetCols []string) BiasReport {
	if groupCols == nil {
		groupCols = a.cfg.GroupColumns
	}
	if targetCols == nil {
		targetCols = a.cfg.TargetColumns
	}

	report := make(BiasReport)
	for _, groupCol := range groupCols {
		if _, ok := a.tbl.Column(groupCol); !ok {
			continue
		}
		entry, err := a.biasForColumn(groupCol, targetCols)
		if err != nil {
			report[groupCol] = BiasEntry{Error: fmt.Sprintf("analysis failed: %v", err)}
			continue
		}
		report[groupCol] = entry
	}
	return report
}

// biasForColumn computes the category distribution statistics and the
// per-category means of each numeric target column
func (a *Analyzer) biasForColumn(groupCol string, targetCols []string) (BiasEntry, error) {
	col, _ := a.tbl.Column(groupCol)

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
		return BiasEntry{}, fmt.Errorf("column %q has no non-null values", groupCol)
	}

	maxShare, minShare := 0.0, 1.0
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		// Small additive epsilon keeps log2 defined at zero shares
		entropy -= p * math.Log2(p+1e-9)
		if p > maxShare {
			maxShare = p
		}
		if p < minShare {
			minShare = p
		}
	}

	entry := BiasEntry{
		Distribution: &CategoryDistribution{
			Entropy:    round4(entropy),
			MaxShare:   round4(maxShare),
			MinShare:   round4(minShare),
			ShareRange: round4(maxShare - minShare),
			GroupCount: len(counts),
		},
		TargetMeans: make(map[string]TargetBias),
	}

	for _, target := range targetCols {
		targetCol, ok := a.tbl.Column(target)
		if !ok || !targetCol.Type.IsNumeric() {
			continue
		}
		means := groupMeans(col, targetCol)
		if len(means) == 0 {
			continue
		}
		maxMean, minMean := math.Inf(-1), math.Inf(1)
		for _, m := range means {
			if m > maxMean {
				maxMean = m
			}
			if m < minMean {
				minMean = m
			}
		}
		entry.TargetMeans[target] = TargetBias{
			GroupMeans: means,
			MeansRange: round4(maxMean - minMean),
		}
	}
	return entry, nil
}

// groupMeans averages the target column per category, skipping null cells on
// either side
func groupMeans(groupCol, targetCol *table.Column) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, g := range groupCol.Values {
		t := targetCol.Values[i]
		if g.Missing || t.Missing {
			continue
		}
		key := g.Display()
		sums[key] += t.Num
		counts[key]++
	}
	means := make(map[string]float64, len(sums))
	for key, sum := range sums {
		means[key] = sum / float64(counts[key])
	}
	return means
}

// AnalyzeSensitiveData classifies every column name against the personal and
// sensitive keyword vocabularies, skipping the configured name exceptions
func (a *Analyzer) AnalyzeSensitiveData() SensitivityReport {
	var personal, sensitive []string

	for _, name := range a.tbl.ColumnNames() {
		lower := strings.ToLower(name)
		if a.isNameException(lower) {
			continue
		}
		if containsAny(lower, a.cfg.SensitiveKeywords) {
			sensitive = append(sensitive, name)
		}
		if containsAny(lower, a.cfg.PersonalKeywords) {
			personal = append(personal, name)
		}
	}

	level := RiskLow
	switch {
	case len(personal) > 0 || len(sensitive) > 0:
		level = RiskHigh
	case a.hasPseudonymizedColumns():
		level = RiskMedium
	}

	return SensitivityReport{
		PersonalColumns:  personal,
		SensitiveColumns: sensitive,
		RiskLevel:        level,
	}
}

func (a *Analyzer) isNameException(lowerName string) bool {
	for _, exc := range a.cfg.NameExceptions {
		if lowerName == exc {
			return true
		}
	}
	return false
}

func (a *Analyzer) hasPseudonymizedColumns() bool {
	for _, name := range a.tbl.ColumnNames() {
		lower := strings.ToLower(name)
		if a.isNameException(lower) {
			continue
		}
		if strings.Contains(lower, "id") {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// DataLineage annotates every column of the analysis table with its recorded
// origin. This is pure metadata lookup, not inferred from data.
func (a *Analyzer) DataLineage() []LineageEntry {
	entries := make([]LineageEntry, 0, a.tbl.NumCols())
	for _, name := range a.tbl.ColumnNames() {
		lineage, ok := a.cfg.LineageMap[name]
		if !ok {
			lineage = UnknownLineage
		}
		entries = append(entries, LineageEntry{
			Column:     name,
			Source:     lineage.Source,
			Derivation: lineage.Derivation,
		})
	}
	return entries
}

// EvaluateRisk combines privacy, bias and lineage into an overall ordinal
// risk label. Bias is always recomputed over the configured default columns,
// independent of any interactive selection.
func (a *Analyzer) EvaluateRisk() RiskAssessment {
	privacy := a.AnalyzeSensitiveData()
	privacyScore := 0
	switch privacy.RiskLevel {
	case RiskHigh:
		privacyScore = 2
	case RiskMedium:
		privacyScore = 1
	}

	biasScore := 0
	for _, entry := range a.AnalyzeBias(nil, nil) {
		if entry.Distribution == nil {
			continue
		}
		score := 0
		switch spread := entry.Distribution.ShareRange; {
		case spread > 0.5:
			score = 2
		case spread > 0.2:
			score = 1
		}
		if score > biasScore {
			biasScore = score
		}
	}

	unknowns := 0
	for _, entry := range a.DataLineage() {
		if entry.Source == UnknownLineage.Source {
			unknowns++
		}
	}
	lineageScore := 0
	switch {
	case unknowns > 3:
		lineageScore = 2
	case unknowns > 0:
		lineageScore = 1
	}

	total := privacyScore + biasScore + lineageScore
	overall := RiskLow
	switch {
	case total >= 5:
		overall = RiskHigh
	case total >= 3:
		overall = RiskMedium
	}

	return RiskAssessment{
		Overall:      overall,
		TotalScore:   total,
		PrivacyScore: privacyScore,
		BiasScore:    biasScore,
		LineageScore: lineageScore,
		Privacy:      privacy.RiskLevel,
		Bias:         [3]string{"Low", "Medium", "High"}[biasScore],
		Lineage:      [3]string{"Known", "Partially unknown", "Undefined"}[lineageScore],
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
