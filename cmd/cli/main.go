package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gridstat/adapters/excel"
	"gridstat/adapters/stats/engine"
	"gridstat/adapters/stats/profile"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/config"
	"gridstat/internal/report"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gridstat",
		Short: "Statistical analysis over CSV and Excel tables",
	}

	rootCmd.AddCommand(
		newDescribeCmd(),
		newCorrelateCmd(),
		newPartialCmd(),
		newDistanceCmd(),
		newRegressCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadTable resolves the data file from the flag or DATA_FILE and ingests it
func loadTable(file string) (*dataset.Table, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if file == "" {
		file = cfg.Data.FilePath
	}
	if file == "" {
		return nil, fmt.Errorf("no data file: pass --file or set DATA_FILE")
	}
	return excel.NewTableReader(cfg.Data.MaxRows).Read(file)
}

// emit renders an envelope as Markdown, or JSON with --json
func emit(result *stats.AnalysisResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	md, err := report.Markdown(result)
	if err != nil {
		return err
	}
	fmt.Print(md)
	return nil
}

func newDescribeCmd() *cobra.Command {
	var file string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "describe <variable>",
		Short: "Summary statistics for one variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			key, err := core.ParseVariableKey(args[0])
			if err != nil {
				return err
			}
			result, err := engine.NewStatsEngine().Describe(table, key)
			if err != nil {
				return err
			}
			return emit(result, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	return cmd
}

func newCorrelateCmd() *cobra.Command {
	var file, method, tail, missing string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "correlate <variable>...",
		Short: "Correlation matrix with significance flags",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			keys, err := core.VariableKeys(args)
			if err != nil {
				return err
			}
			result, err := engine.NewStatsEngine().Correlate(table, keys,
				stats.Method(method), stats.TailType(tail), stats.MissingPolicy(missing))
			if err != nil {
				return err
			}
			return emit(result, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	cmd.Flags().StringVar(&method, "method", "pearson", "pearson or spearman")
	cmd.Flags().StringVar(&tail, "tail", "two", "one or two")
	cmd.Flags().StringVar(&missing, "missing", "listwise", "listwise or pairwise")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	return cmd
}

func newPartialCmd() *cobra.Command {
	var file string
	var controls []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "partial <variable>...",
		Short: "Partial correlations holding control variables fixed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			keys, err := core.VariableKeys(args)
			if err != nil {
				return err
			}
			controlKeys, err := core.VariableKeys(controls)
			if err != nil {
				return err
			}
			result, err := engine.NewStatsEngine().PartialCorrelate(table, keys, controlKeys)
			if err != nil {
				return err
			}
			return emit(result, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	cmd.Flags().StringSliceVarP(&controls, "control", "c", nil, "control variable (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	cmd.MarkFlagRequired("control")
	return cmd
}

func newDistanceCmd() *cobra.Command {
	var file, metric string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "distance <variable>...",
		Short: "Case-distance matrix over the selected variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			keys, err := core.VariableKeys(args)
			if err != nil {
				return err
			}
			result, err := engine.NewStatsEngine().Distances(table, keys, stats.DistanceMetric(metric))
			if err != nil {
				return err
			}
			return emit(result, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	cmd.Flags().StringVar(&metric, "metric", "euclidean", "euclidean, squared_euclidean, manhattan or chebyshev")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	return cmd
}

func newRegressCmd() *cobra.Command {
	var file string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "regress <dependent> <independent>...",
		Short: "Ordinary least squares with inferential statistics",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			dependent, err := core.ParseVariableKey(args[0])
			if err != nil {
				return err
			}
			independents, err := core.VariableKeys(args[1:])
			if err != nil {
				return err
			}
			result, err := engine.NewStatsEngine().Regress(table, dependent, independents)
			if err != nil {
				return err
			}
			return emit(result, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of Markdown")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Column profiles for the whole table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			profiles, err := profile.NewProfiler().Table(table)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "data file (CSV or XLSX)")
	return cmd
}
