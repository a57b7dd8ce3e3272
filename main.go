package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rental-scraper/browser"
	"rental-scraper/catalog"
	"rental-scraper/config"
	"rental-scraper/models"
	"rental-scraper/scraper"
	"rental-scraper/scraper/dubizzle"
	"rental-scraper/scraper/invygo"
	"rental-scraper/services"
	"rental-scraper/storage"
	"rental-scraper/utils"
)

// reportingSite is a Site that also knows how to merge and lay out its report.
type reportingSite interface {
	scraper.Site
	MergeRules() services.MergeRules
	Columns() []models.Column
}

var siteNames = []string{dubizzle.Name, invygo.Name}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var site, catalogPath, outputDir string

	cmd := &cobra.Command{
		Use:           "rental-scraper",
		Short:         "Scrape rental-car offers into one report per site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			sites, err := selectSites(site)
			if err != nil {
				return err
			}

			var errs []error
			for _, name := range sites {
				if err := runSite(cmd.Context(), cfg, name); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
				}
			}
			if err := errors.Join(errs...); err != nil {
				fmt.Fprintf(os.Stderr, "rental-scraper: %v\n", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&site, "site", "all", "site to scrape: "+strings.Join(siteNames, ", ")+" or all")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog CSV (overrides CATALOG_PATH)")
	cmd.Flags().StringVar(&outputDir, "output", "", "report directory (overrides OUTPUT_DIR)")
	return cmd
}

func selectSites(flag string) ([]string, error) {
	flag = strings.ToLower(strings.TrimSpace(flag))
	if flag == "all" {
		return siteNames, nil
	}
	for _, name := range siteNames {
		if flag == name {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("unknown site %q", flag)
}

func newSite(name string, cfg *config.Config) reportingSite {
	loader := scraper.Loader{
		Poller:       browser.Poller{MaxTries: cfg.ReadyMaxTries, Delay: cfg.ReadyDelay},
		ScrollPause:  cfg.ScrollPause,
		ScrollRounds: cfg.ScrollMaxRounds,
		Settle:       cfg.SettleDelay,
	}
	if name == invygo.Name {
		return invygo.New(loader, cfg.PriceWait, cfg.PriceFallback)
	}
	return dubizzle.New(loader)
}

// runSite scrapes one site end to end and writes its report. An empty run
// writes nothing and is returned as an error.
func runSite(ctx context.Context, cfg *config.Config, name string) error {
	logPath := filepath.Join(cfg.LogDir, name+"_scraper.log")
	logger, err := utils.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("open log %s: %w", logPath, err)
	}
	defer logger.Sync()

	logger.Info("=== %s scraper starting ===", strings.ToUpper(name))
	logger.Info("Config: concurrency %d | retries %d | retry delay %v | nav timeout %v",
		cfg.MaxConcurrency, cfg.MaxRetries, cfg.RetryDelay, cfg.NavTimeout)

	entries, err := catalog.Load(cfg.CatalogPath, name)
	if err != nil {
		logger.Error("Failed to load catalog: %v", err)
		return err
	}
	logger.Info("Loaded %d catalog entries from %s", len(entries), cfg.CatalogPath)

	session, err := browser.Open(browser.Options{
		Headless:   cfg.Headless,
		ChromeBin:  cfg.ChromeBin,
		NavTimeout: cfg.NavTimeout,
	})
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Error closing browser: %v", err)
		}
	}()

	site := newSite(name, cfg)
	runner := scraper.NewRunner(site, session, entries, scraper.RunnerConfig{
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimitMs:    cfg.RateLimitMs,
		Retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			Delay:       cfg.RetryDelay,
			Conditions:  browser.WaitConditions,
		},
	}, logger)

	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error("No data found. Check the logs for errors.")
		return err
	}
	if len(res.FailedTasks) > 0 {
		logger.Warn("Failed tasks: %s", strings.Join(res.FailedTasks, ", "))
	}

	rows := services.NewMerger(site.MergeRules()).Merge(res.Listings, res.Offers)

	reportPath := filepath.Join(cfg.OutputDir, name+"_rentals.csv")
	if err := storage.NewCSVWriter().Write(reportPath, site.Columns(), rows); err != nil {
		logger.Error("Report write failed: %v", err)
		return err
	}
	logger.Info("Successfully saved %d rows to %s", len(rows), reportPath)
	logger.Info("Logs saved to %s", logPath)

	if cfg.PostgresEnabled {
		archiveRows(cfg, logger, name, rows)
	}

	insights := services.NewInsightService(logger)
	insights.Print(insights.Generate(name, rows))
	return nil
}

// archiveRows stores rows in PostgreSQL. The CSV report is the deliverable, so
// archive failures are only logged.
func archiveRows(cfg *config.Config, logger *utils.Logger, site string, rows []*models.MergedRow) {
	pg, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return
	}
	defer pg.Close()

	if err := pg.Write(site, rows); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return
	}
	n, err := pg.CountRun(site)
	if err != nil {
		logger.Warn("Could not verify archived rows: %v", err)
		return
	}
	logger.Info("Archived %d rows in PostgreSQL (table: rental_offers, run %s)", n, pg.RunID())
}
