package readiness

// ClassBalance holds the normalized class frequencies of the target column.
// Applicable is false when no target is set, the target is absent, or the
// target carries too many distinct values.
type ClassBalance struct {
	Applicable  bool               `json:"applicable"`
	Frequencies map[string]float64 `json:"frequencies,omitempty"`
}

// ColumnMetadata is one row of the metadata-quality report
type ColumnMetadata struct {
	Column       string `json:"column"`
	Type         string `json:"type"`
	NullCount    int    `json:"nulls"`
	UniqueValues int    `json:"unique_values"`
}

// NumericSummary is the representativeness report for one numeric column
type NumericSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// CorrelationPair is one high-correlation finding
type CorrelationPair struct {
	ColumnA string  `json:"column_a"`
	ColumnB string  `json:"column_b"`
	Value   float64 `json:"value"`
}

// TrainStatus tags the outcome of a baseline-model training attempt
type TrainStatus string

const (
	// StatusOK means the model trained and was evaluated
	StatusOK TrainStatus = "ok"
	// StatusNoTarget means no target column was designated
	StatusNoTarget TrainStatus = "no_target"
	// StatusTargetMissing means the designated column is absent after
	// dropping incomplete rows
	StatusTargetMissing TrainStatus = "target_missing"
	// StatusContinuous means the target looks like a regression label, not a
	// class label
	StatusContinuous TrainStatus = "target_continuous"
	// StatusFitFailed means model fitting itself failed
	StatusFitFailed TrainStatus = "fit_failed"
)

// ClassMetrics holds per-class evaluation results
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// TrainOutcome is the tagged result of TrainSimpleModel: exactly one of the
// non-OK statuses, or StatusOK with the evaluation payload populated
type TrainOutcome struct {
	Status      TrainStatus             `json:"status"`
	Message     string                  `json:"message,omitempty"`
	Accuracy    float64                 `json:"accuracy,omitempty"`
	ClassLabels []string                `json:"class_labels,omitempty"`
	Report      map[string]ClassMetrics `json:"report,omitempty"`
}

// OK reports whether training succeeded
func (o TrainOutcome) OK() bool {
	return o.Status == StatusOK
}
