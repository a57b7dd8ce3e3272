package scraper

import (
	"context"
	"fmt"

	"rental-scraper/browser"
	"rental-scraper/models"
	"rental-scraper/utils"
)

// RunnerConfig bounds a Runner.
type RunnerConfig struct {
	MaxConcurrency int
	RateLimitMs    int
	Retry          *utils.RetryConfig
}

// Result is the aggregate of every task of one run.
type Result struct {
	Listings    []*models.Listing
	Offers      []*models.ContractOffer
	FailedTasks []string
}

// Runner executes one site's tasks concurrently, one page per task.
type Runner struct {
	site    Site
	opener  browser.Opener
	entries []models.CatalogEntry
	filter  *Filter
	cfg     RunnerConfig
	logger  *utils.Logger
	seen    *utils.URLSet
}

// NewRunner creates a Runner for site over the given catalog entries.
func NewRunner(site Site, opener browser.Opener, entries []models.CatalogEntry, cfg RunnerConfig, logger *utils.Logger) *Runner {
	if cfg.Retry == nil {
		cfg.Retry = &utils.RetryConfig{MaxAttempts: 3, Conditions: browser.WaitConditions}
	}
	return &Runner{
		site:    site,
		opener:  opener,
		entries: entries,
		filter:  NewFilter(entries, site.NormaliseAlias),
		cfg:     cfg,
		logger:  logger,
		seen:    utils.NewURLSet(),
	}
}

type taskResult struct {
	listings []*models.Listing
	offers   []*models.ContractOffer
	failed   bool
}

// Run launches every task at once, waits for all of them and aggregates the
// results in task order. A failed task contributes nothing and never stops
// its siblings. ErrEmptyRun is returned alongside the (empty) result when no
// listing survived.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	tasks := r.site.Tasks(r.entries)
	r.logger.Info("[%s] Starting %d tasks (concurrency %d, catalog keys %d)",
		r.site.Name(), len(tasks), r.cfg.MaxConcurrency, r.filter.Len())

	results := make([]taskResult, len(tasks))
	pool := utils.NewWorkerPool(r.cfg.MaxConcurrency, r.cfg.RateLimitMs)
	for i, task := range tasks {
		i, task := i, task
		results[i].failed = true
		pool.Submit(ctx, func() {
			results[i] = r.runTask(ctx, task)
		})
	}
	pool.Wait()

	res := &Result{}
	for i, tr := range results {
		if tr.failed {
			res.FailedTasks = append(res.FailedTasks, tasks[i].Name)
		}
		res.Listings = append(res.Listings, tr.listings...)
		res.Offers = append(res.Offers, tr.offers...)
	}

	r.logger.Info("[%s] Tasks done: %d listings, %d offers, %d failed tasks",
		r.site.Name(), len(res.Listings), len(res.Offers), len(res.FailedTasks))

	if len(res.Listings) == 0 {
		return res, ErrEmptyRun
	}
	return res, nil
}

func (r *Runner) runTask(ctx context.Context, task Task) (tr taskResult) {
	log := utils.NewTaskLog(task.Name)
	defer log.Flush(r.logger)

	page, err := r.opener.NewPage()
	if err != nil {
		log.Error("Could not open page: %v", err)
		return taskResult{failed: true}
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("Closing page: %v", err)
		}
	}()

	log.Info("Starting scrape for %s", task.URL)

	var scraped []*models.Listing
	err = r.cfg.Retry.Do(ctx, "listing page", log, func(ctx context.Context, cond string) error {
		ls, err := r.site.ScrapeListings(ctx, page, task, browser.WaitCondition(cond), log)
		if err != nil {
			return err
		}
		if len(ls) == 0 {
			return fmt.Errorf("%w: no cards on %s", utils.ErrExtraction, task.URL)
		}
		scraped = ls
		return nil
	})
	if err != nil {
		log.Error("Scraping failed: %v", err)
		return taskResult{failed: true}
	}
	log.Info("Successfully scraped %d listings", len(scraped))

	kept := r.filter.Apply(scraped)
	log.Info("Filtered to %d matching listings", len(kept))

	for _, l := range kept {
		if !r.seen.Add(l.SubURL) {
			log.Warn("Duplicate listing skipped: %s", l.SubURL)
			continue
		}
		l.Title = r.site.Title(l)
		tr.listings = append(tr.listings, l)
	}

	// detail pages share the task's page, so they run one after another
	for _, l := range tr.listings {
		log.Info("Starting scrape for %s", l.SubURL)
		var offers []*models.ContractOffer
		err := r.cfg.Retry.Do(ctx, "detail page", log, func(ctx context.Context, cond string) error {
			got, err := r.site.ScrapeDetail(ctx, page, l, browser.WaitCondition(cond), log)
			if err != nil {
				return err
			}
			if len(got) == 0 {
				return fmt.Errorf("%w: no contract options on %s", utils.ErrExtraction, l.SubURL)
			}
			offers = got
			return nil
		})
		if err != nil {
			log.Error("Detail page error: %v", err)
			continue
		}
		for _, o := range offers {
			o.SubURL = l.SubURL
		}
		log.Info("Successfully scraped %d contract options", len(offers))
		tr.offers = append(tr.offers, offers...)
	}

	return tr
}
