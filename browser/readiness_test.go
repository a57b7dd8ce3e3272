package browser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rental-scraper/browser"
	"rental-scraper/browser/browsertest"
)

const listURL = "https://example.com/list"

func TestWaitUntilReadyFindsMarker(t *testing.T) {
	site := browsertest.Site{listURL: {`<div id="wrap"><a data-testid="listing-1">x</a></div>`}}
	page := browsertest.NewPage(site, nil)
	_ = page.Navigate(context.Background(), listURL, browser.Load)

	p := browser.Poller{MaxTries: 3, Delay: time.Millisecond}
	ok := p.WaitUntilReady(context.Background(), page, browser.Readiness{Region: "#wrap", Markers: []string{"data-testid"}})

	assert.True(t, ok)
	assert.Equal(t, 0, page.Wheels, "ready on first check needs no nudge")
}

func TestWaitUntilReadyExhausts(t *testing.T) {
	site := browsertest.Site{listURL: {`<div id="wrap">loading</div>`}}
	page := browsertest.NewPage(site, nil)
	_ = page.Navigate(context.Background(), listURL, browser.Load)

	p := browser.Poller{MaxTries: 4, Delay: time.Millisecond}
	ok := p.WaitUntilReady(context.Background(), page, browser.Readiness{Region: "#wrap", Markers: []string{"data-testid"}})

	assert.False(t, ok)
	assert.Equal(t, 4, page.Wheels)
}

func TestWaitUntilReadyNeverFailsOnReadErrors(t *testing.T) {
	// nothing navigated: every read errors
	page := browsertest.NewPage(browsertest.Site{}, nil)

	p := browser.Poller{MaxTries: 2, Delay: time.Millisecond}
	ok := p.WaitUntilReady(context.Background(), page, browser.Readiness{Markers: []string{"x"}})
	assert.False(t, ok)
}

func TestReadinessAnyMarker(t *testing.T) {
	r := browser.Readiness{Markers: []string{`data-testid="listing-sub-heading"`, `data-testid="rental-price-`}}
	assert.True(t, r.Ready(`<h5 data-testid="rental-price-daily">AED 100</h5>`))
	assert.False(t, r.Ready(`<p>spinner</p>`))
}

func TestScrollToBottomStopsWhenHeightStable(t *testing.T) {
	site := browsertest.Site{listURL: {`<body></body>`}}
	page := browsertest.NewPage(site, nil)
	// before/after pairs: grows once, then stable
	page.SetHeights(1000, 2000, 2000, 2000, 3000)

	err := browser.ScrollToBottom(context.Background(), page, time.Millisecond, 3)
	assert.NoError(t, err)

	// two rounds consumed four readings; the fifth is never read
	h, _ := page.ScrollHeight(context.Background())
	assert.Equal(t, int64(3000), h)
}
