package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"rental-scraper/utils"
)

// lifecycleNames maps wait conditions to CDP lifecycle event names.
var lifecycleNames = map[WaitCondition]string{
	DOMContentLoaded: "DOMContentLoaded",
	Load:             "load",
	NetworkIdle:      "networkIdle",
}

type chromePage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	onClose func(*chromePage)

	events chan lifecycleEvent
}

type lifecycleEvent struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
	name   string
}

func newChromePage(parent context.Context, timeout time.Duration, onClose func(*chromePage)) (*chromePage, error) {
	ctx, cancel := chromedp.NewContext(parent)
	p := &chromePage{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		onClose: onClose,
		events:  make(chan lifecycleEvent, 256),
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok {
			select {
			case p.events <- lifecycleEvent{frame: e.FrameID, loader: e.LoaderID, name: e.Name}:
			default:
			}
		}
	})

	// the first Run attaches the tab
	if err := chromedp.Run(ctx, page.SetLifecycleEventsEnabled(true)); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return p, nil
}

// run executes actions on the tab, bounded by both ctx and the navigation timeout.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) drainEvents() {
	for {
		select {
		case <-p.events:
		default:
			return
		}
	}
}

func (p *chromePage) Navigate(ctx context.Context, url string, cond WaitCondition) error {
	want, ok := lifecycleNames[cond]
	if !ok {
		want = lifecycleNames[Load]
	}
	p.drainEvents()

	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		frame, loader, errText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("page load error %s", errText)
		}
		for {
			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for %s: %w", cond, ctx.Err())
			case ev := <-p.events:
				if ev.frame != frame || (loader != "" && ev.loader != loader) {
					continue
				}
				if ev.name == want {
					return nil
				}
			}
		}
	}))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", utils.ErrNavigation, url, err)
	}
	return nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	js := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return el ? el.innerHTML : ""; })()`, selector)
	if err := p.run(ctx, chromedp.Evaluate(js, &html)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Wheel(ctx context.Context, dy float64) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseWheel, 400, 300).
			WithDeltaX(0).
			WithDeltaY(dy).
			Do(ctx)
	}))
}

func (p *chromePage) ScrollHeight(ctx context.Context) (int64, error) {
	var h int64
	if err := p.run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &h)); err != nil {
		return 0, err
	}
	return h, nil
}

func (p *chromePage) ScrollToEnd(ctx context.Context) error {
	return p.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (p *chromePage) Count(ctx context.Context, selector string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := p.run(ctx, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *chromePage) Click(ctx context.Context, selector string, index int) error {
	var clicked bool
	js := fmt.Sprintf(`(() => {
		const el = document.querySelectorAll(%q)[%d];
		if (!el) return false;
		el.scrollIntoView({block: "center"});
		el.click();
		return true;
	})()`, selector, index)
	if err := p.run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element %d for %s", index, selector)
	}
	return nil
}

func (p *chromePage) WaitFor(ctx context.Context, predicate string, timeout time.Duration) error {
	var ok bool
	return p.run(ctx, chromedp.Poll(predicate, &ok,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
}

func (p *chromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if p.onClose != nil {
		p.onClose(p)
	}
	return err
}
