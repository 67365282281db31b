package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"saleslens/internal"
	"saleslens/internal/ingest"
	"saleslens/internal/quality"
	"saleslens/internal/readiness"
	"saleslens/internal/report"
	"saleslens/internal/store"
)

func main() {
	var (
		dataDir   string
		storePath string
		outPath   string
		separator string
		decimal   string
		encoding  string
		noHeader  bool
		method    string
		zScore    float64
		bins      int
		corr      float64
		target    string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run a full data audit over a retail star-schema CSV directory",
		Long: `Load the star-schema CSV files, flatten them into a single analysis
table and write the data quality, AI compliance and AI readiness report
as an Excel workbook.

Example: audit --data ./data --out audit.xlsx --target ChannelName`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := internal.DefaultLogger

			sep := ';'
			if separator != "" {
				runes := []rune(separator)
				if len(runes) != 1 {
					return fmt.Errorf("separator must be a single character, got %q", separator)
				}
				sep = runes[0]
			}

			loader := ingest.NewLoader(ingest.Options{
				Separator: sep,
				Decimal:   decimal,
				Encoding:  encoding,
				HasHeader: !noHeader,
			})
			loaded, err := loader.LoadDir(ctx, dataDir)
			if err != nil {
				return err
			}

			st, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, lt := range loaded {
				if err := st.SaveTable(ctx, lt.Name, lt.Table); err != nil {
					return err
				}
				logger.Info("loaded %s (%d records)", lt.Name, lt.Table.NumRows())
			}

			tbl, err := st.Flatten(ctx)
			if err != nil {
				return err
			}
			logger.Info("flattened analysis table: %d rows, %d columns", tbl.NumRows(), tbl.NumCols())

			audit, err := report.Run(tbl, report.Options{
				OutlierMethod:   quality.OutlierMethod(method),
				ZScoreThreshold: zScore,
				Bins:            bins,
				CorrThreshold:   corr,
				TargetColumn:    target,
			})
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer out.Close()

			if _, err := report.NewExcelWriter(audit).WriteTo(out); err != nil {
				return err
			}
			logger.Info("audit %s written to %s (overall risk: %s)", audit.ID, outPath, audit.Risk.Overall)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "./data", "directory containing the star-schema CSV files")
	cmd.Flags().StringVar(&storePath, "db", "saleslens.db", "SQLite database path")
	cmd.Flags().StringVar(&outPath, "out", "audit.xlsx", "output workbook path")
	cmd.Flags().StringVar(&separator, "separator", ";", "CSV column separator")
	cmd.Flags().StringVar(&decimal, "decimal", ",", "decimal mark used in numeric CSV fields")
	cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "CSV character encoding")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first CSV row as data")
	cmd.Flags().StringVar(&method, "method", string(quality.MethodIQR), "outlier detection method (iqr or zscore)")
	cmd.Flags().Float64Var(&zScore, "zscore-threshold", quality.DefaultZScoreThreshold, "z-score outlier threshold")
	cmd.Flags().IntVar(&bins, "bins", quality.DefaultBins, "histogram bin count")
	cmd.Flags().Float64Var(&corr, "corr-threshold", readiness.DefaultCorrelationThreshold, "correlation reporting threshold")
	cmd.Flags().StringVar(&target, "target", "", "target column for class balance and model training")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
