package browser

import (
	"context"
	"strings"
	"time"

	"rental-scraper/utils"
)

// Readiness describes a site's "content has rendered" signal: the region to
// inspect and the markers, any of which means ready.
type Readiness struct {
	Region  string
	Markers []string
}

// Ready reports whether html contains any of the markers.
func (r Readiness) Ready(html string) bool {
	for _, m := range r.Markers {
		if strings.Contains(html, m) {
			return true
		}
	}
	return false
}

// Poller repeatedly checks a Readiness signal, nudging the page between checks.
type Poller struct {
	MaxTries int
	Delay    time.Duration
	Nudge    float64
}

// WaitUntilReady checks the region up to MaxTries times, scrolling the page and
// pausing between checks. Read errors count as "not ready"; it never fails.
func (p Poller) WaitUntilReady(ctx context.Context, page Page, r Readiness) bool {
	nudge := p.Nudge
	if nudge == 0 {
		nudge = 1000
	}
	for i := 0; i < p.MaxTries; i++ {
		region := r.Region
		if region == "" {
			region = "body"
		}
		if html, err := page.InnerHTML(ctx, region); err == nil && r.Ready(html) {
			return true
		}
		_ = page.Wheel(ctx, nudge)
		if err := utils.SleepContext(ctx, p.Delay); err != nil {
			return false
		}
	}
	return false
}

// ScrollToBottom scrolls to the end of the page up to maxRounds times, stopping
// as soon as the document height stops growing.
func ScrollToBottom(ctx context.Context, page Page, pause time.Duration, maxRounds int) error {
	for i := 0; i < maxRounds; i++ {
		prev, err := page.ScrollHeight(ctx)
		if err != nil {
			return err
		}
		if err := page.ScrollToEnd(ctx); err != nil {
			return err
		}
		if err := utils.SleepContext(ctx, pause); err != nil {
			return err
		}
		next, err := page.ScrollHeight(ctx)
		if err != nil {
			return err
		}
		if next == prev {
			break
		}
	}
	return nil
}
