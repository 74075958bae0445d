// Command ingest lädt SDO-Publikationen aus NASA ADS in den Dokumentenkatalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sdo-api/config"
	"sdo-api/providers"
	"sdo-api/providers/ads"
	"sdo-api/services"
	"sdo-api/storage"
)

type options struct {
	query      string
	filter     string
	sort       string
	rows       int
	maxRecords int
	schedule   string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Harvest SDO publications from NASA ADS into the catalog",
		Long: `ingest queries the NASA ADS search API and upserts the results into the
document catalog configured via DB_DRIVER. With --schedule the process keeps
running and repeats the harvest on the given cron expression.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.query, "query", "abstract:SDO", "ADS search query")
	cmd.Flags().StringVar(&opts.filter, "fq", "property:refereed", "ADS filter query")
	cmd.Flags().StringVar(&opts.sort, "sort", "date desc", "ADS sort order")
	cmd.Flags().IntVar(&opts.rows, "rows", ads.DefaultRows, "page size per ADS request")
	cmd.Flags().IntVar(&opts.maxRecords, "max-records", 0, "stop after this many records (0 = all)")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "cron expression; run periodically instead of once")
	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	logging, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logging.Sync()

	store, err := storage.Open(cfg, logging)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher := ads.NewFetcher(cfg, logging)
	fetcher.Rows = opts.rows
	ingest := services.NewIngestService(store, logging, fetcher)
	q := providers.Query{Q: opts.query, FilterQuery: opts.filter, Sort: opts.sort, MaxRecords: opts.maxRecords}

	if opts.schedule == "" {
		_, err := ingest.Run(ctx, q)
		return err
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(opts.schedule, func() {
		logging.Info("Running scheduled ingest job...")
		count, err := ingest.Run(ctx, q)
		if err != nil {
			logging.Error("Ingest job failed", zap.Error(err))
			return
		}
		logging.Info("Ingest job completed", zap.Int("documents", count))
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", opts.schedule, err)
	}
	scheduler.Start()
	logging.Info("Ingest scheduler started", zap.String("schedule", opts.schedule))

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
