package commands

import (
	"encoding/json"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/adapter/seedfile"
	"github.com/user/profile-harvester/internal/app"
	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/monitoring"
)

var (
	runSeedFile    string
	runConcurrency int
	runStore       bool
)

func init() {
	runCmd.Flags().StringVarP(&runSeedFile, "file", "f", "seeds.yaml", "YAML or JSON file of seed entries.")
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 0, "Maximum concurrent page loads (default HARVEST_CONCURRENCY).")
	runCmd.Flags().BoolVar(&runStore, "store", false, "Persist results to PostgreSQL and Redis.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run -f <seeds.yaml> [-c N] [--store]",
	Short: "Runs one harvest and prints the report as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		entries, err := seedfile.Load(runSeedFile)
		if err != nil {
			return err
		}
		seeds, _ := entity.ExpandEntries(entries)

		metrics := monitoring.NewMetrics(prometheus.NewRegistry())
		pipeline, err := app.NewPipeline(cfg, metrics, log)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var out any
		if runStore {
			stores, err := app.OpenStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			res, err := app.NewHarvestService(cfg, pipeline, stores, metrics, log).RunHarvest(ctx, seeds, runConcurrency)
			if err != nil {
				return err
			}
			log.Info("results stored", zap.Int("stored", res.Stored), zap.Int("store_failures", res.StoreFailures))
			out = res.Report
		} else {
			concurrency := runConcurrency
			if concurrency == 0 {
				concurrency = cfg.Concurrency
			}
			report, err := pipeline.Run(ctx, seeds, concurrency)
			if err != nil {
				return err
			}
			out = report
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
