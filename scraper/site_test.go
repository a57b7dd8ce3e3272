package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-scraper/browser"
	"rental-scraper/browser/browsertest"
	"rental-scraper/utils"
)

func testLoader() Loader {
	return Loader{
		Poller:       browser.Poller{MaxTries: 2, Delay: time.Millisecond},
		ScrollPause:  time.Millisecond,
		ScrollRounds: 3,
	}
}

func TestLoaderReturnsDocumentWhenReady(t *testing.T) {
	const url = "https://example.com/ready"
	page := browsertest.NewPage(browsertest.Site{url: {`<div id="w"><a data-testid="x"></a></div>`}}, nil)

	html, err := testLoader().Load(context.Background(), page, url, browser.NetworkIdle,
		browser.Readiness{Region: "#w", Markers: []string{"data-testid"}})

	require.NoError(t, err)
	assert.Contains(t, html, `data-testid="x"`)
	assert.Equal(t, []browser.WaitCondition{browser.NetworkIdle}, page.Conditions)
}

func TestLoaderClassifiesFailures(t *testing.T) {
	const url = "https://example.com/slow"
	page := browsertest.NewPage(browsertest.Site{url: {`<div id="w">spinner</div>`}}, nil)

	_, err := testLoader().Load(context.Background(), page, url, browser.Load,
		browser.Readiness{Region: "#w", Markers: []string{"data-testid"}})
	assert.True(t, errors.Is(err, utils.ErrContentNotReady))

	_, err = testLoader().Load(context.Background(), page, "https://example.com/missing", browser.Load,
		browser.Readiness{Markers: []string{"x"}})
	assert.True(t, errors.Is(err, utils.ErrNavigation))
}
