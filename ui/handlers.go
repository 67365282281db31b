package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"saleslens/domain/table"
	"saleslens/internal/compliance"
	"saleslens/internal/ingest"
	"saleslens/internal/quality"
	"saleslens/internal/readiness"
	"saleslens/internal/report"
)

// loadRequest carries the CSV reader options for an ingestion run. Omitted
// fields fall back to the configured defaults.
type loadRequest struct {
	Dir       string `json:"dir"`
	Separator string `json:"separator"`
	Decimal   string `json:"decimal"`
	Encoding  string `json:"encoding"`
	HasHeader *bool  `json:"has_header"`
}

func (a *App) handleLoad(w http.ResponseWriter, r *http.Request) {
	req := loadRequest{
		Dir:       a.cfg.Data.Dir,
		Separator: a.cfg.Data.Separator,
		Decimal:   a.cfg.Data.Decimal,
		Encoding:  a.cfg.Data.Encoding,
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondErrorStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	hasHeader := a.cfg.Data.HasHeader
	if req.HasHeader != nil {
		hasHeader = *req.HasHeader
	}
	if req.Dir == "" {
		req.Dir = a.cfg.Data.Dir
	}

	sep, err := separatorRune(req.Separator)
	if err != nil {
		respondErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	loader := ingest.NewLoader(ingest.Options{
		Separator: sep,
		Decimal:   req.Decimal,
		Encoding:  req.Encoding,
		HasHeader: hasHeader,
	})
	loaded, err := loader.LoadDir(r.Context(), req.Dir)
	if err != nil {
		respondError(w, err)
		return
	}

	type tableInfo struct {
		Name    string `json:"name"`
		Records int    `json:"records"`
	}
	var saved []tableInfo
	for _, lt := range loaded {
		if err := a.store.SaveTable(r.Context(), lt.Name, lt.Table); err != nil {
			respondError(w, err)
			return
		}
		saved = append(saved, tableInfo{Name: lt.Name, Records: lt.Table.NumRows()})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tables": saved})
}

func (a *App) handleListTables(w http.ResponseWriter, r *http.Request) {
	names, err := a.store.ListTables(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tables": names})
}

func (a *App) handleTablePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit := queryInt(r, "limit", 10)
	tbl, err := a.store.ReadTable(r.Context(), name, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tablePreview(tbl))
}

func (a *App) handleFlatten(w http.ResponseWriter, r *http.Request) {
	tbl, err := a.store.Flatten(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	a.setAnalysisTable(tbl)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows":    tbl.NumRows(),
		"columns": tbl.ColumnNames(),
	})
}

func (a *App) handleQualityReport(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	method := quality.OutlierMethod(queryString(r, "method", string(quality.MethodIQR)))
	zThreshold := queryFloat(r, "zscore_threshold", quality.DefaultZScoreThreshold)
	bins := queryInt(r, "bins", quality.DefaultBins)
	expected, err := parseExpectedTypes(r.URL.Query().Get("expected"))
	if err != nil {
		respondErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	analyzer := quality.NewAnalyzer(tbl, expected)
	qualityReport, err := analyzer.GenerateReport(method, zThreshold, bins)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, qualityReport)
}

func (a *App) handleBias(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	analyzer := compliance.NewAnalyzer(tbl)
	groups := queryList(r, "groups")
	targets := queryList(r, "targets")
	respondJSON(w, http.StatusOK, analyzer.AnalyzeBias(groups, targets))
}

func (a *App) handleSensitive(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, compliance.NewAnalyzer(tbl).AnalyzeSensitiveData())
}

func (a *App) handleLineage(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, compliance.NewAnalyzer(tbl).DataLineage())
}

func (a *App) handleRisk(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, compliance.NewAnalyzer(tbl).EvaluateRisk())
}

func (a *App) handleClassBalance(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	analyzer := readiness.NewAnalyzer(tbl, r.URL.Query().Get("target"))
	respondJSON(w, http.StatusOK, analyzer.ClassBalance())
}

func (a *App) handleMetadata(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, readiness.NewAnalyzer(tbl, "").MetadataQuality())
}

func (a *App) handleRepresentativeness(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	summaries, hasNumeric := readiness.NewAnalyzer(tbl, "").Representativeness()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"has_numeric_data": hasNumeric,
		"summaries":        summaries,
	})
}

func (a *App) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	threshold := queryFloat(r, "threshold", readiness.DefaultCorrelationThreshold)
	pairs := readiness.NewAnalyzer(tbl, "").CorrelationInsights(threshold)
	respondJSON(w, http.StatusOK, map[string]interface{}{"pairs": pairs})
}

func (a *App) handleModel(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	analyzer := readiness.NewAnalyzer(tbl, r.URL.Query().Get("target"))
	respondJSON(w, http.StatusOK, analyzer.TrainSimpleModel())
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	tbl, ok := a.requireAnalysisTable(w)
	if !ok {
		return
	}
	opts := report.Options{
		OutlierMethod:   quality.OutlierMethod(queryString(r, "method", string(quality.MethodIQR))),
		ZScoreThreshold: queryFloat(r, "zscore_threshold", quality.DefaultZScoreThreshold),
		Bins:            queryInt(r, "bins", quality.DefaultBins),
		CorrThreshold:   queryFloat(r, "threshold", readiness.DefaultCorrelationThreshold),
		TargetColumn:    r.URL.Query().Get("target"),
	}
	audit, err := report.Run(tbl, opts)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=audit_%s.xlsx", audit.ID))
	if _, err := report.NewExcelWriter(audit).WriteTo(w); err != nil {
		a.logger.Error("failed to stream workbook: %v", err)
	}
}

// requireAnalysisTable fetches the current flattened table or answers with a
// conflict explaining that nothing was flattened yet
func (a *App) requireAnalysisTable(w http.ResponseWriter) (*table.Table, bool) {
	tbl := a.analysisTable()
	if tbl == nil {
		respondErrorStatus(w, http.StatusConflict, "no analysis table loaded - POST /api/flatten first")
		return nil, false
	}
	return tbl, true
}

// tablePreview renders a table as column names plus stringified rows
func tablePreview(tbl *table.Table) map[string]interface{} {
	rows := make([][]string, tbl.NumRows())
	for i := range rows {
		cells := tbl.Row(i)
		row := make([]string, len(cells))
		for j, v := range cells {
			row[j] = v.Display()
		}
		rows[i] = row
	}
	return map[string]interface{}{
		"columns": tbl.ColumnNames(),
		"rows":    rows,
	}
}

// Query parameter helpers

func queryString(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// queryList splits a comma-separated parameter; nil means "use defaults"
func queryList(r *http.Request, key string) []string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// separatorRune maps the separator parameter to a rune, accepting "\t" and
// "tab" for the tabulator
func separatorRune(s string) (rune, error) {
	switch s {
	case "", ";":
		return ';', nil
	case ",":
		return ',', nil
	case "|":
		return '|', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported column separator %q", s)
	}
}

// parseExpectedTypes parses "col:type,col2:type" into an expected-type map
func parseExpectedTypes(raw string) (map[string]table.ValueType, error) {
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]table.ValueType)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid expected-type entry %q", pair)
		}
		name := strings.TrimSpace(parts[0])
		typeName := table.ValueType(strings.TrimSpace(parts[1]))
		switch typeName {
		case table.TypeInt, table.TypeFloat, table.TypeString, table.TypeBool, table.TypeTime:
			out[name] = typeName
		default:
			return nil, fmt.Errorf("unknown expected type %q for column %q", parts[1], name)
		}
	}
	return out, nil
}
