package readiness

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"saleslens/domain/table"
)

const (
	// trainSplitSeed fixes the train/test shuffle for reproducibility
	trainSplitSeed = 0
	// testFraction is the held-out share of rows
	testFraction = 0.3
	// maxFitIterations bounds the gradient-descent epochs
	maxFitIterations = 500
	// fitLearningRate is the gradient-descent step size
	fitLearningRate = 0.1
	// continuousCardinality is the distinct-value count above which a numeric
	// target is judged continuous rather than categorical
	continuousCardinality = 50
)

// TrainSimpleModel drops incomplete rows, label-encodes text columns, splits
// 70/30 and fits a multinomial logistic-regression baseline against the
// target column. Every failure mode is reported through the outcome tag, not
// an error.
func (a *Analyzer) TrainSimpleModel() TrainOutcome {
	if a.target == "" {
		return TrainOutcome{Status: StatusNoTarget, Message: "no target column selected"}
	}

	complete := a.tbl.DropRowsWithNulls()
	targetCol, ok := complete.Column(a.target)
	if !ok {
		return TrainOutcome{Status: StatusTargetMissing, Message: fmt.Sprintf("target column %q does not exist in the data", a.target)}
	}

	if reason, continuous := looksContinuous(targetCol); continuous {
		return TrainOutcome{Status: StatusContinuous, Message: reason}
	}

	y, classLabels := encodeTarget(targetCol)
	if len(classLabels) < 2 {
		return TrainOutcome{Status: StatusFitFailed, Message: "target column has fewer than two classes"}
	}

	features := featureColumns(complete, a.target)
	n := complete.NumRows()
	if len(features) == 0 || n < 4 {
		return TrainOutcome{Status: StatusFitFailed, Message: "not enough data to fit a model"}
	}

	X := buildDesignMatrix(features, n)
	trainIdx, testIdx := splitIndices(n)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return TrainOutcome{Status: StatusFitFailed, Message: "not enough data to split into train and test sets"}
	}

	model, err := fitSoftmax(X, y, len(classLabels), trainIdx)
	if err != nil {
		return TrainOutcome{Status: StatusFitFailed, Message: fmt.Sprintf("model training failed: %v", err)}
	}

	predicted := make([]int, len(testIdx))
	actual := make([]int, len(testIdx))
	for i, row := range testIdx {
		predicted[i] = model.predict(X.RawRowView(row))
		actual[i] = y[row]
	}

	return TrainOutcome{
		Status:      StatusOK,
		Accuracy:    accuracy(actual, predicted),
		ClassLabels: classLabels,
		Report:      classificationReport(actual, predicted, classLabels),
	}
}

// looksContinuous applies the cardinality-and-dtype heuristic: a float column
// holding non-integral values, or any numeric column with very high
// cardinality, is a regression label
func looksContinuous(col *table.Column) (string, bool) {
	if col.Type == table.TypeFloat {
		for _, v := range col.Values {
			if !v.Missing && v.Num != math.Trunc(v.Num) {
				return "target column is continuous (float values) - looks like a regression label, not a classification label", true
			}
		}
	}
	if col.Type.IsNumeric() && col.UniqueCount() > continuousCardinality {
		return fmt.Sprintf("target column has %d distinct numeric values - looks like a regression label, not a classification label", col.UniqueCount()), true
	}
	return "", false
}

// encodeTarget label-encodes the target with sorted-unique ordering and
// returns the recorded class labels for report relabeling
func encodeTarget(col *table.Column) ([]int, []string) {
	unique := make(map[string]struct{})
	for _, v := range col.Values {
		unique[v.Display()] = struct{}{}
	}
	labels := make([]string, 0, len(unique))
	for label := range unique {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	y := make([]int, len(col.Values))
	for i, v := range col.Values {
		y[i] = index[v.Display()]
	}
	return y, labels
}

func featureColumns(tbl *table.Table, target string) []*table.Column {
	var cols []*table.Column
	for i, col := range tbl.Columns() {
		if col.Name == target {
			continue
		}
		cols = append(cols, &tbl.Columns()[i])
	}
	return cols
}

// buildDesignMatrix turns the feature columns into a dense matrix. Text
// columns get an arbitrary-but-consistent integer label encoding; booleans
// and timestamps become numeric.
func buildDesignMatrix(features []*table.Column, n int) *mat.Dense {
	X := mat.NewDense(n, len(features), nil)
	for j, col := range features {
		switch {
		case col.Type.IsNumeric():
			for i, v := range col.Values {
				X.Set(i, j, v.Num)
			}
		case col.Type == table.TypeBool:
			for i, v := range col.Values {
				if v.Bool {
					X.Set(i, j, 1)
				}
			}
		case col.Type == table.TypeTime:
			for i, v := range col.Values {
				X.Set(i, j, float64(v.Time.Unix()))
			}
		default:
			encoded, _ := encodeTarget(col)
			for i, e := range encoded {
				X.Set(i, j, float64(e))
			}
		}
	}
	return X
}

// splitIndices shuffles row indices with a fixed seed and holds out the test
// fraction
func splitIndices(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(trainSplitSeed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testN := int(math.Ceil(float64(n) * testFraction))
	if testN >= n {
		testN = n - 1
	}
	return idx[testN:], idx[:testN]
}

// softmaxModel is a multinomial logistic-regression classifier with
// per-feature standardization baked in at fit time
type softmaxModel struct {
	weights *mat.Dense // (features+1) x classes, bias in row 0
	means   []float64
	scales  []float64
}

// fitSoftmax trains by full-batch gradient descent on the training rows
func fitSoftmax(X *mat.Dense, y []int, classes int, trainIdx []int) (*softmaxModel, error) {
	_, d := X.Dims()
	n := len(trainIdx)

	// Standardize with train-set statistics so the fixed step size behaves
	means := make([]float64, d)
	scales := make([]float64, d)
	for j := 0; j < d; j++ {
		sum := 0.0
		for _, i := range trainIdx {
			sum += X.At(i, j)
		}
		means[j] = sum / float64(n)
		ss := 0.0
		for _, i := range trainIdx {
			diff := X.At(i, j) - means[j]
			ss += diff * diff
		}
		scales[j] = math.Sqrt(ss / float64(n))
		if scales[j] == 0 {
			scales[j] = 1
		}
	}

	model := &softmaxModel{
		weights: mat.NewDense(d+1, classes, nil),
		means:   means,
		scales:  scales,
	}

	probs := make([]float64, classes)
	grad := mat.NewDense(d+1, classes, nil)
	for iter := 0; iter < maxFitIterations; iter++ {
		grad.Zero()
		for _, i := range trainIdx {
			model.scores(X.RawRowView(i), probs)
			softmax(probs)
			for k := 0; k < classes; k++ {
				delta := probs[k]
				if k == y[i] {
					delta -= 1
				}
				grad.Set(0, k, grad.At(0, k)+delta)
				for j := 0; j < d; j++ {
					z := (X.At(i, j) - means[j]) / scales[j]
					grad.Set(j+1, k, grad.At(j+1, k)+delta*z)
				}
			}
		}
		step := fitLearningRate / float64(n)
		for j := 0; j <= d; j++ {
			for k := 0; k < classes; k++ {
				w := model.weights.At(j, k) - step*grad.At(j, k)
				if math.IsNaN(w) || math.IsInf(w, 0) {
					return nil, fmt.Errorf("optimization diverged at iteration %d", iter)
				}
				model.weights.Set(j, k, w)
			}
		}
	}
	return model, nil
}

// scores writes the raw class logits for one row into out
func (m *softmaxModel) scores(row []float64, out []float64) {
	_, classes := m.weights.Dims()
	for k := 0; k < classes; k++ {
		s := m.weights.At(0, k)
		for j, x := range row {
			z := (x - m.means[j]) / m.scales[j]
			s += m.weights.At(j+1, k) * z
		}
		out[k] = s
	}
}

func (m *softmaxModel) predict(row []float64) int {
	_, classes := m.weights.Dims()
	probs := make([]float64, classes)
	m.scores(row, probs)
	best := 0
	for k := 1; k < classes; k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return best
}

// softmax normalizes logits in place with the max-subtraction trick
func softmax(logits []float64) {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	for i, v := range logits {
		logits[i] = math.Exp(v - max)
		sum += logits[i]
	}
	for i := range logits {
		logits[i] /= sum
	}
}

func accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual))
}

// classificationReport computes precision/recall/F1/support per class,
// keyed by the original class label
func classificationReport(actual, predicted []int, labels []string) map[string]ClassMetrics {
	report := make(map[string]ClassMetrics, len(labels))
	for k, label := range labels {
		var tp, fp, fn, support int
		for i := range actual {
			switch {
			case actual[i] == k && predicted[i] == k:
				tp++
			case actual[i] != k && predicted[i] == k:
				fp++
			case actual[i] == k && predicted[i] != k:
				fn++
			}
			if actual[i] == k {
				support++
			}
		}
		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[label] = ClassMetrics{Precision: precision, Recall: recall, F1: f1, Support: support}
	}
	return report
}
