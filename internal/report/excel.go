package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"saleslens/internal/errors"
)

// ExcelWriter renders an audit as a multi-sheet workbook, one sheet per
// analyzer section
type ExcelWriter struct {
	audit *Audit
}

// NewExcelWriter creates a writer for the given audit
func NewExcelWriter(audit *Audit) *ExcelWriter {
	return &ExcelWriter{audit: audit}
}

// WriteTo streams the workbook. The default Sheet1 becomes the overview.
func (w *ExcelWriter) WriteTo(out io.Writer) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeOverview(f); err != nil {
		return 0, err
	}
	if err := w.writeQuality(f); err != nil {
		return 0, err
	}
	if err := w.writeCompliance(f); err != nil {
		return 0, err
	}
	if err := w.writeReadiness(f); err != nil {
		return 0, err
	}

	written, err := f.WriteTo(out)
	if err != nil {
		return written, errors.Wrap(err, "failed to write workbook")
	}
	return written, nil
}

func (w *ExcelWriter) writeOverview(f *excelize.File) error {
	sheet := "Overview"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "failed to rename overview sheet")
	}
	rows := [][]interface{}{
		{"Audit ID", w.audit.ID},
		{"Generated at", w.audit.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Rows", w.audit.Rows},
		{"Columns", w.audit.Columns},
		{"Overall risk", string(w.audit.Risk.Overall)},
		{"Privacy", string(w.audit.Risk.Privacy)},
		{"Bias", w.audit.Risk.Bias},
		{"Lineage", w.audit.Risk.Lineage},
		{"Missing values (%)", w.audit.Quality.MissingValues.TotalPercent},
		{"Duplicates (%)", w.audit.Quality.Duplicates.Percent},
		{"Outliers (%)", w.audit.Quality.Outliers.TotalPercent},
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeQuality(f *excelize.File) error {
	sheet := "Data Quality"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to create quality sheet")
	}

	rows := [][]interface{}{
		{"Column", "Type", "Count", "Unique", "Mean", "Std", "Min", "Q25", "Median", "Q75", "Max", "Missing %", "Outliers"},
	}
	for _, cs := range w.audit.Quality.BasicStats {
		missing := w.audit.Quality.MissingValues.PerColumn[cs.Column]
		outliers := w.audit.Quality.Outliers.PerColumn[cs.Column]
		rows = append(rows, []interface{}{
			cs.Column, cs.Type, cs.Count, cs.Unique,
			floatCell(cs.Mean), floatCell(cs.Std), floatCell(cs.Min),
			floatCell(cs.Q25), floatCell(cs.Median), floatCell(cs.Q75), floatCell(cs.Max),
			missing, outliers.Count,
		})
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeCompliance(f *excelize.File) error {
	sheet := "AI Compliance"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to create compliance sheet")
	}

	rows := [][]interface{}{
		{"Grouping column", "Entropy (bits)", "Max share", "Min share", "Share range", "Groups", "Error"},
	}
	groupCols := make([]string, 0, len(w.audit.Bias))
	for name := range w.audit.Bias {
		groupCols = append(groupCols, name)
	}
	sort.Strings(groupCols)
	for _, name := range groupCols {
		entry := w.audit.Bias[name]
		if entry.Error != "" {
			rows = append(rows, []interface{}{name, nil, nil, nil, nil, nil, entry.Error})
			continue
		}
		d := entry.Distribution
		rows = append(rows, []interface{}{name, d.Entropy, d.MaxShare, d.MinShare, d.ShareRange, d.GroupCount, ""})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Column", "Source", "Derivation"})
	for _, entry := range w.audit.Lineage {
		rows = append(rows, []interface{}{entry.Column, entry.Source, entry.Derivation})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Personal columns", fmt.Sprintf("%v", w.audit.Sensitivity.PersonalColumns)})
	rows = append(rows, []interface{}{"Sensitive columns", fmt.Sprintf("%v", w.audit.Sensitivity.SensitiveColumns)})
	rows = append(rows, []interface{}{"Privacy risk", string(w.audit.Sensitivity.RiskLevel)})
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeReadiness(f *excelize.File) error {
	sheet := "AI Readiness"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to create readiness sheet")
	}

	rows := [][]interface{}{
		{"Column", "Count", "Mean", "Std", "Min", "Q25", "Median", "Q75", "Max", "Skewness"},
	}
	for _, s := range w.audit.Representativeness {
		rows = append(rows, []interface{}{
			s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skewness,
		})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Correlated pair", "", "r"})
	for _, p := range w.audit.Correlations {
		rows = append(rows, []interface{}{p.ColumnA, p.ColumnB, p.Value})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Model status", string(w.audit.Model.Status)})
	if w.audit.Model.OK() {
		rows = append(rows, []interface{}{"Accuracy", w.audit.Model.Accuracy})
		rows = append(rows, []interface{}{"Class", "Precision", "Recall", "F1", "Support"})
		labels := make([]string, 0, len(w.audit.Model.Report))
		for label := range w.audit.Model.Report {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			m := w.audit.Model.Report[label]
			rows = append(rows, []interface{}{label, m.Precision, m.Recall, m.F1, m.Support})
		}
	} else if w.audit.Model.Message != "" {
		rows = append(rows, []interface{}{"Detail", w.audit.Model.Message})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell coordinates")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d of %s", i+1, sheet)
		}
	}
	return nil
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
