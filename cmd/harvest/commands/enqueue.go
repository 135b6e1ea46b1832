package commands

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/user/profile-harvester/internal/adapter/seedfile"
	"github.com/user/profile-harvester/internal/app"
	"github.com/user/profile-harvester/internal/monitoring"
)

var enqueueSeedFile string

func init() {
	enqueueCmd.Flags().StringVarP(&enqueueSeedFile, "file", "f", "seeds.yaml", "YAML or JSON file of seed entries.")
	rootCmd.AddCommand(enqueueCmd)
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue -f <seeds.yaml>",
	Short: "Pushes seed entries onto the queue drained by scheduled runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		entries, err := seedfile.Load(enqueueSeedFile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		stores, err := app.OpenStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		metrics := monitoring.NewMetrics(prometheus.NewRegistry())
		pipeline, err := app.NewPipeline(cfg, metrics, log)
		if err != nil {
			return err
		}
		if err := app.NewHarvestService(cfg, pipeline, stores, metrics, log).Enqueue(ctx, entries...); err != nil {
			return err
		}
		fmt.Printf("enqueued %d seed entries\n", len(entries))
		return nil
	},
}
