package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-scraper/browser"
	"rental-scraper/models"
	"rental-scraper/utils"
)

// ErrEmptyRun is returned when no task produced a single listing.
var ErrEmptyRun = errors.New("no listings survived scraping and filtering")

// Task is one unit of concurrent work: a (make, model) pair or a rental mode.
type Task struct {
	Name  string
	URL   string
	Make  string
	Model string
	Mode  string
}

// Site is the site-specific half of the pipeline. ScrapeListings and
// ScrapeDetail perform a single attempt; the Runner owns retries.
type Site interface {
	Name() string
	Tasks(entries []models.CatalogEntry) []Task
	// NormaliseAlias rewrites a catalog model alias into the form the site
	// prints on its listing cards.
	NormaliseAlias(model string) string
	ScrapeListings(ctx context.Context, page browser.Page, task Task, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.Listing, error)
	// Title derives the display title of a listing that passed the filter.
	Title(l *models.Listing) string
	ScrapeDetail(ctx context.Context, page browser.Page, l *models.Listing, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.ContractOffer, error)
}

// Loader performs the navigate, wait-for-ready, scroll and settle steps that
// precede every extraction.
type Loader struct {
	Poller       browser.Poller
	ScrollPause  time.Duration
	ScrollRounds int
	Settle       time.Duration
}

// Load brings url to a ready state and returns the rendered document.
func (l Loader) Load(ctx context.Context, page browser.Page, url string, cond browser.WaitCondition, ready browser.Readiness) (string, error) {
	if err := page.Navigate(ctx, url, cond); err != nil {
		if !errors.Is(err, utils.ErrNavigation) {
			err = fmt.Errorf("%w: %s: %v", utils.ErrNavigation, url, err)
		}
		return "", err
	}
	if !l.Poller.WaitUntilReady(ctx, page, ready) {
		return "", fmt.Errorf("%w: %s", utils.ErrContentNotReady, url)
	}
	if err := browser.ScrollToBottom(ctx, page, l.ScrollPause, l.ScrollRounds); err != nil {
		return "", fmt.Errorf("%w: scroll %s: %v", utils.ErrNavigation, url, err)
	}
	if err := utils.SleepContext(ctx, l.Settle); err != nil {
		return "", err
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", utils.ErrNavigation, url, err)
	}
	return html, nil
}
