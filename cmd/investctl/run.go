package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/dataset"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/matching"
	"github.com/denisok6893-rgb/property-investment/internal/model"
	"github.com/denisok6893-rgb/property-investment/internal/service"
	"github.com/denisok6893-rgb/property-investment/internal/storage"
)

// loadCatalog uses the built-in catalog unless a catalog file was given. A
// bad file is an error here; only the API server falls back to defaults.
func loadCatalog(v *viper.Viper) (*catalog.Catalog, error) {
	path := v.GetString("catalog")
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func loadEngine(v *viper.Viper) (*investment.Engine, error) {
	c, err := loadCatalog(v)
	if err != nil {
		return nil, err
	}
	return investment.NewEngine(c), nil
}

func openStore(path string) (*storage.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := store.EnsureSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (f requestFlags) request() domain.ReportRequest {
	return domain.ReportRequest{
		PropertyType: f.propertyType,
		District:     f.district,
		LandArea:     f.landArea,
		NumFloors:    f.numFloors,
	}
}

func runReport(ctx context.Context, v *viper.Viper, req requestFlags, batchPath, dbPath string, asJSON bool) error {
	engine, err := loadEngine(v)
	if err != nil {
		return err
	}

	var repo service.ReportRepository
	if dbPath != "" {
		store, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		repo = store
	}
	svc := service.NewReportService(engine, repo, nil)

	if batchPath == "" {
		res, err := svc.Generate(ctx, req.request())
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}
		printReport(res.Report)
		if res.ID != "" {
			fmt.Printf("\nSaved as %s\n", res.ID)
		}
		return nil
	}

	reqs, err := storage.LoadRequestsFromFile(batchPath)
	if err != nil {
		return err
	}
	items, err := svc.GenerateBatch(ctx, reqs)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(items)
	}
	printBatch(items)
	return nil
}

type datasetOptions struct {
	n       int
	seed    uint64
	workers int
	out     string
	dbPath  string
}

func runDataset(ctx context.Context, v *viper.Viper, opts datasetOptions) error {
	if opts.n <= 0 {
		return fmt.Errorf("samples must be > 0, got %d", opts.n)
	}
	engine, err := loadEngine(v)
	if err != nil {
		return err
	}
	sampler, err := dataset.NewSampler(engine.Catalog(), opts.seed, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := dataset.NewGenerator(engine, opts.workers).Generate(ctx, sampler.Samples(opts.n))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.out, err)
	}
	if err := dataset.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	batchID := ""
	if opts.dbPath != "" {
		store, err := openStore(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		batchID, err = store.SaveDatasetRows(ctx, "", rows)
		if err != nil {
			return fmt.Errorf("save dataset rows: %w", err)
		}
	}

	printDatasetSummary(rows, opts.out, batchID, elapsed)
	return nil
}

type trainOptions struct {
	dataPath     string
	dbPath       string
	batchID      string
	modelsDir    string
	lambda       float64
	testFraction float64
	seed         uint64
	outlierK     float64
}

func runTrain(ctx context.Context, opts trainOptions) error {
	rows, source, err := trainingRows(ctx, opts)
	if err != nil {
		return err
	}
	log.Printf("loaded %d rows from %s", len(rows), source)

	set, err := model.Train(rows, model.TrainOptions{
		Lambda:       opts.lambda,
		TestFraction: opts.testFraction,
		Seed:         opts.seed,
		OutlierK:     opts.outlierK,
	})
	if err != nil {
		return err
	}
	if err := set.Save(opts.modelsDir); err != nil {
		return fmt.Errorf("save models: %w", err)
	}

	printMetrics(set)
	fmt.Printf("\nModels written to %s\n", opts.modelsDir)
	return nil
}

func trainingRows(ctx context.Context, opts trainOptions) ([]domain.DatasetRow, string, error) {
	if opts.dbPath != "" {
		store, err := openStore(opts.dbPath)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		rows, err := store.LoadDatasetRows(ctx, opts.batchID)
		if err != nil {
			return nil, "", fmt.Errorf("load dataset rows: %w", err)
		}
		return rows, opts.dbPath, nil
	}

	f, err := os.Open(opts.dataPath)
	if err != nil {
		return nil, "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	rows, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, "", err
	}
	return rows, opts.dataPath, nil
}

func runPredict(v *viper.Viper, req requestFlags, modelsDir string, asJSON bool) error {
	engine, err := loadEngine(v)
	if err != nil {
		return err
	}
	set, err := model.Load(modelsDir)
	if err != nil {
		if errors.Is(err, model.ErrNoModel) {
			return fmt.Errorf("%w (run investctl train first)", err)
		}
		return err
	}
	cmp, err := model.Compare(engine, set, req.request())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmp)
	}
	printComparison(cmp)
	return nil
}

func runMatch(v *viper.Viper, req domain.MatchRequest, asJSON bool) error {
	engine, err := loadEngine(v)
	if err != nil {
		return err
	}
	w := matching.DefaultWeights()
	if path := v.GetString("weights"); path != "" {
		if w, err = matching.LoadWeightsFromFile(path); err != nil {
			return err
		}
	}
	res, err := matching.NewEngine(engine, w).Match(req)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(res)
	}
	printMatch(res)
	return nil
}

func runCatalog(v *viper.Viper) error {
	c, err := loadCatalog(v)
	if err != nil {
		return err
	}
	printCatalog(c)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
