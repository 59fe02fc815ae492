package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/model"
)

func main() {
	v := viper.New()
	v.SetEnvPrefix("INVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "investctl",
		Short:        "Real-estate investment feasibility engine",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("catalog", "", "pricing catalog file (.json, .yaml); env INVEST_CATALOG")
	_ = v.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.AddCommand(reportCmd(v))
	rootCmd.AddCommand(datasetCmd(v))
	rootCmd.AddCommand(trainCmd(v))
	rootCmd.AddCommand(predictCmd(v))
	rootCmd.AddCommand(matchCmd(v))
	rootCmd.AddCommand(catalogCmd(v))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// requestFlags are the four inputs shared by report and predict.
type requestFlags struct {
	propertyType string
	district     string
	landArea     float64
	numFloors    int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.propertyType, "type", "t", "", "property type (tower, hotel, administrative_building, residential_compound, villa, villas, commercial_mall)")
	cmd.Flags().StringVarP(&f.district, "district", "d", "", "district name")
	cmd.Flags().Float64VarP(&f.landArea, "land", "l", 0, "land area in m²")
	cmd.Flags().IntVarP(&f.numFloors, "floors", "f", 0, "number of floors")
}

func reportCmd(v *viper.Viper) *cobra.Command {
	var (
		req       requestFlags
		batchPath string
		asJSON    bool
		dbPath    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an investment report from flags or a batch file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), v, req, batchPath, dbPath, asJSON)
		},
	}
	req.register(cmd)
	cmd.Flags().StringVar(&batchPath, "batch", "", "JSON or YAML file with a list of requests")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to record reports in")
	return cmd
}

func datasetCmd(v *viper.Viper) *cobra.Command {
	var opts datasetOptions
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Generate a synthetic training dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDataset(cmd.Context(), v, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.n, "samples", "n", 5000, "number of rows")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 42, "sampling seed")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "real_estate_data.csv", "CSV output path")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "also store rows in this SQLite file")
	return cmd
}

func trainCmd(v *viper.Viper) *cobra.Command {
	var opts trainOptions
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train one regression model per target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd.Context(), opts)
		},
	}
	defaults := model.DefaultTrainOptions()
	cmd.Flags().StringVar(&opts.dataPath, "data", "real_estate_data.csv", "dataset CSV")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "read rows from this SQLite file instead of --data")
	cmd.Flags().StringVar(&opts.batchID, "batch-id", "", "dataset batch to read from --db (empty = all)")
	cmd.Flags().StringVar(&opts.modelsDir, "models", "models", "output directory")
	cmd.Flags().Float64Var(&opts.lambda, "lambda", defaults.Lambda, "ridge penalty")
	cmd.Flags().Float64Var(&opts.testFraction, "test-fraction", defaults.TestFraction, "share of rows held out")
	cmd.Flags().Uint64Var(&opts.seed, "seed", defaults.Seed, "split seed")
	cmd.Flags().Float64Var(&opts.outlierK, "outlier-k", defaults.OutlierK, "IQR fence multiplier (0 disables outlier removal)")
	return cmd
}

func predictCmd(v *viper.Viper) *cobra.Command {
	var (
		req       requestFlags
		modelsDir string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Compare the formula engine with the trained models",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPredict(v, req, modelsDir, asJSON)
		},
	}
	req.register(cmd)
	cmd.Flags().StringVar(&modelsDir, "models", "models", "model directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func matchCmd(v *viper.Viper) *cobra.Command {
	var (
		req    domain.MatchRequest
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank property types for a plot",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMatch(v, req, asJSON)
		},
	}
	cmd.Flags().StringVarP(&req.District, "district", "d", "", "district name")
	cmd.Flags().Float64VarP(&req.LandArea, "land", "l", 0, "land area in m²")
	cmd.Flags().IntVarP(&req.NumFloors, "floors", "f", 0, "number of floors")
	cmd.Flags().StringSliceVarP(&req.PropertyTypes, "types", "t", nil, "property types to consider (default all)")
	cmd.Flags().Float64Var(&req.BudgetMax, "budget", 0, "maximum total investment (0 = no limit)")
	cmd.Flags().Float64Var(&req.MinRentalROI, "min-roi", 0, "minimum rental ROI in percent")
	cmd.Flags().IntVar(&req.Limit, "limit", 5, "number of results")
	cmd.Flags().String("weights", "", "match weights file (.json, .yaml); env INVEST_WEIGHTS")
	_ = v.BindPFlag("weights", cmd.Flags().Lookup("weights"))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func catalogCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show property types, districts, prices and ratios",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCatalog(v)
		},
	}
}
