package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// UserAgents is the identity pool a session picks from.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

const (
	viewportWidth  = 1366
	viewportHeight = 768
)

// Options configures a browser session.
type Options struct {
	Headless   bool
	ChromeBin  string
	NavTimeout time.Duration
}

// Session owns one browser process and hands out one tab per task.
// It is safe for concurrent use.
type Session struct {
	UserAgent string

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	navTimeout    time.Duration

	mu     sync.Mutex
	pages  map[*chromePage]struct{}
	closed bool
}

// Open launches the browser with a random identity from UserAgents.
func Open(opts Options) (*Session, error) {
	ua := UserAgents[rand.Intn(len(UserAgents))]

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("incognito", true),
		chromedp.UserAgent(ua),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	// Suppress chromedp log noise
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	timeout := opts.NavTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Session{
		UserAgent:     ua,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		navTimeout:    timeout,
		pages:         make(map[*chromePage]struct{}),
	}, nil
}

// NewPage opens a fresh tab in the shared browser.
func (s *Session) NewPage() (Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("browser: session closed")
	}
	s.mu.Unlock()

	p, err := newChromePage(s.browserCtx, s.navTimeout, s.forget)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = chromedp.Cancel(p.ctx)
		p.cancel()
		return nil, fmt.Errorf("browser: session closed")
	}
	s.pages[p] = struct{}{}
	return p, nil
}

func (s *Session) forget(p *chromePage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, p)
}

// Close tears down every open tab, then the browser. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	open := make([]*chromePage, 0, len(s.pages))
	for p := range s.pages {
		open = append(open, p)
	}
	s.pages = map[*chromePage]struct{}{}
	s.mu.Unlock()

	for _, p := range open {
		_ = chromedp.Cancel(p.ctx)
		p.cancel()
	}

	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	return err
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
