// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rental-scraper/browser"
	"rental-scraper/utils"
)

// Site maps a URL to the sequence of documents it renders. Index 0 is the
// document after navigation; clicking the i-th control shows index i+1.
type Site map[string][]string

// Page serves documents from a Site.
type Page struct {
	site        Site
	navigateErr func(url string) error

	mu         sync.Mutex
	url        string
	state      int
	heights    []int64
	Visits     []string
	Conditions []browser.WaitCondition
	Clicks     []int
	Wheels     int
	WaitErr    error
	Closed     bool
}

// NewPage returns a page serving site. navigateErr may be nil.
func NewPage(site Site, navigateErr func(url string) error) *Page {
	return &Page{site: site, navigateErr: navigateErr}
}

// SetHeights scripts successive ScrollHeight results; the last value repeats.
func (p *Page) SetHeights(h ...int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heights = h
}

func (p *Page) current() (string, error) {
	docs, ok := p.site[p.url]
	if !ok || len(docs) == 0 {
		return "", fmt.Errorf("no document loaded")
	}
	if p.state >= len(docs) {
		return docs[len(docs)-1], nil
	}
	return docs[p.state], nil
}

func (p *Page) Navigate(ctx context.Context, url string, cond browser.WaitCondition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visits = append(p.Visits, url)
	p.Conditions = append(p.Conditions, cond)
	if p.navigateErr != nil {
		if err := p.navigateErr(url); err != nil {
			return err
		}
	}
	if _, ok := p.site[url]; !ok {
		return fmt.Errorf("%w: %s: 404", utils.ErrNavigation, url)
	}
	p.url = url
	p.state = 0
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current()
}

func (p *Page) doc() (*goquery.Document, error) {
	html, err := p.current()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *Page) InnerHTML(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, err := p.doc()
	if err != nil {
		return "", err
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", nil
	}
	return sel.Html()
}

func (p *Page) Wheel(ctx context.Context, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Wheels++
	return nil
}

func (p *Page) ScrollHeight(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.heights) == 0 {
		return 1000, nil
	}
	h := p.heights[0]
	if len(p.heights) > 1 {
		p.heights = p.heights[1:]
	}
	return h, nil
}

func (p *Page) ScrollToEnd(ctx context.Context) error { return nil }

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, err := p.doc()
	if err != nil {
		return 0, err
	}
	return doc.Find(selector).Length(), nil
}

func (p *Page) Click(ctx context.Context, selector string, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, err := p.doc()
	if err != nil {
		return err
	}
	if index >= doc.Find(selector).Length() {
		return fmt.Errorf("no element %d for %s", index, selector)
	}
	p.Clicks = append(p.Clicks, index)
	p.state = index + 1
	return nil
}

func (p *Page) WaitFor(ctx context.Context, predicate string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.WaitErr
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Opener hands out Pages that all serve the same Site.
type Opener struct {
	Site        Site
	NavigateErr func(url string) error

	mu    sync.Mutex
	Pages []*Page
}

func (o *Opener) NewPage() (browser.Page, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := NewPage(o.Site, o.NavigateErr)
	o.Pages = append(o.Pages, p)
	return p, nil
}

// AllClosed reports whether every page handed out has been closed.
func (o *Opener) AllClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range o.Pages {
		p.mu.Lock()
		closed := p.Closed
		p.mu.Unlock()
		if !closed {
			return false
		}
	}
	return true
}
