package browser

import (
	"context"
	"time"
)

// WaitCondition names the page-load milestone a navigation waits for.
type WaitCondition string

const (
	DOMContentLoaded WaitCondition = "domcontentloaded"
	Load             WaitCondition = "load"
	NetworkIdle      WaitCondition = "networkidle"
)

// WaitConditions is the pool a retry attempt draws from.
var WaitConditions = []string{string(DOMContentLoaded), string(Load), string(NetworkIdle)}

// Page is one browser tab owned by a single scrape task.
type Page interface {
	// Navigate loads url and returns once cond has fired or ctx expires.
	Navigate(ctx context.Context, url string, cond WaitCondition) error
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	// InnerHTML returns the inner HTML of the first element matching selector,
	// or "" when nothing matches.
	InnerHTML(ctx context.Context, selector string) (string, error)
	// Wheel dispatches a mouse-wheel scroll of dy pixels.
	Wheel(ctx context.Context, dy float64) error
	// ScrollHeight reports document.body.scrollHeight.
	ScrollHeight(ctx context.Context) (int64, error)
	// ScrollToEnd scrolls the window to the bottom of the document.
	ScrollToEnd(ctx context.Context) error
	// Count returns how many elements match selector.
	Count(ctx context.Context, selector string) (int, error)
	// Click scrolls the index-th element matching selector into view and clicks it.
	Click(ctx context.Context, selector string, index int) error
	// WaitFor polls a JS predicate until it is truthy or timeout elapses.
	WaitFor(ctx context.Context, predicate string, timeout time.Duration) error
	Close() error
}

// Opener issues pages on demand.
type Opener interface {
	NewPage() (Page, error)
}
