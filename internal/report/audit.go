package report

import (
	"time"

	"github.com/google/uuid"

	"saleslens/domain/table"
	"saleslens/internal/compliance"
	"saleslens/internal/quality"
	"saleslens/internal/readiness"
)

// Options configure a full audit run
type Options struct {
	OutlierMethod   quality.OutlierMethod
	ZScoreThreshold float64
	Bins            int
	ExpectedTypes   map[string]table.ValueType
	GroupColumns    []string
	TargetColumns   []string
	CorrThreshold   float64
	TargetColumn    string // classification target; empty skips model training
}

// Audit bundles every analyzer result for one analysis table
type Audit struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`

	Quality *quality.Report `json:"quality"`

	Bias        compliance.BiasReport        `json:"bias"`
	Sensitivity compliance.SensitivityReport `json:"sensitivity"`
	Lineage     []compliance.LineageEntry    `json:"lineage"`
	Risk        compliance.RiskAssessment    `json:"risk"`

	ClassBalance       readiness.ClassBalance      `json:"class_balance"`
	Metadata           []readiness.ColumnMetadata  `json:"metadata"`
	Representativeness []readiness.NumericSummary  `json:"representativeness"`
	Correlations       []readiness.CorrelationPair `json:"correlations"`
	Model              readiness.TrainOutcome      `json:"model"`
}

// Run executes all three analyzers over the table and assembles the audit
func Run(tbl *table.Table, opts Options) (*Audit, error) {
	qa := quality.NewAnalyzer(tbl, opts.ExpectedTypes)
	qualityReport, err := qa.GenerateReport(opts.OutlierMethod, opts.ZScoreThreshold, opts.Bins)
	if err != nil {
		return nil, err
	}

	ca := compliance.NewAnalyzer(tbl)
	ra := readiness.NewAnalyzer(tbl, opts.TargetColumn)
	representativeness, _ := ra.Representativeness()

	audit := &Audit{
		ID:                 uuid.New().String(),
		GeneratedAt:        time.Now().UTC(),
		Rows:               tbl.NumRows(),
		Columns:            tbl.NumCols(),
		Quality:            qualityReport,
		Bias:               ca.AnalyzeBias(opts.GroupColumns, opts.TargetColumns),
		Sensitivity:        ca.AnalyzeSensitiveData(),
		Lineage:            ca.DataLineage(),
		Risk:               ca.EvaluateRisk(),
		ClassBalance:       ra.ClassBalance(),
		Metadata:           ra.MetadataQuality(),
		Representativeness: representativeness,
		Correlations:       ra.CorrelationInsights(opts.CorrThreshold),
	}
	if opts.TargetColumn != "" {
		audit.Model = ra.TrainSimpleModel()
	} else {
		audit.Model = readiness.TrainOutcome{Status: readiness.StatusNoTarget, Message: "no target column selected"}
	}
	return audit, nil
}
