package compliance

// CategoryDistribution summarizes the category shares of a grouping column
type CategoryDistribution struct {
	Entropy    float64 `json:"entropy_bits"`
	MaxShare   float64 `json:"max_share"`
	MinShare   float64 `json:"min_share"`
	ShareRange float64 `json:"share_range"`
	GroupCount int     `json:"group_count"`
}

// TargetBias holds the per-category mean of one numeric target column and
// the spread of those means
type TargetBias struct {
	GroupMeans map[string]float64 `json:"group_means"`
	MeansRange float64            `json:"means_range"`
}

// BiasEntry is the bias analysis of one grouping column. A non-empty Error
// means the column's analysis failed; the other fields are then unset.
type BiasEntry struct {
	Error        string                `json:"error,omitempty"`
	Distribution *CategoryDistribution `json:"category_distribution,omitempty"`
	TargetMeans  map[string]TargetBias `json:"target_means,omitempty"`
}

// BiasReport maps grouping-column names to their bias analysis
type BiasReport map[string]BiasEntry

// SensitivityReport lists columns judged personal or sensitive and the
// derived ordinal risk
type SensitivityReport struct {
	PersonalColumns  []string  `json:"personal_columns"`
	SensitiveColumns []string  `json:"sensitive_columns"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// RiskAssessment is the aggregated compliance risk: three ordinal component
// scores (0-2 each) summed into an overall three-level label
type RiskAssessment struct {
	Overall      RiskLevel `json:"overall"`
	TotalScore   int       `json:"total_score"`
	PrivacyScore int       `json:"privacy_score"`
	BiasScore    int       `json:"bias_score"`
	LineageScore int       `json:"lineage_score"`
	Privacy      RiskLevel `json:"privacy"`
	Bias         string    `json:"bias"`
	Lineage      string    `json:"lineage"`
}
