package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// ChromeLauncher launches a local Chrome/Chromium over the DevTools protocol.
type ChromeLauncher struct{}

func NewChromeLauncher() *ChromeLauncher { return &ChromeLauncher{} }

type chromeSession struct {
	allocCancel context.CancelFunc
	taskCancel  context.CancelFunc
	taskCtx     context.Context
	page        *chromePage
}

type chromePage struct {
	taskCtx context.Context
	timeout time.Duration
}

func (l *ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	// force browser start so launch failures surface here, not mid-run
	if err := chromedp.Run(taskCtx); err != nil {
		taskCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s := &chromeSession{
		allocCancel: allocCancel,
		taskCancel:  taskCancel,
		taskCtx:     taskCtx,
		page:        &chromePage{taskCtx: taskCtx, timeout: opts.Timeout},
	}

	if len(opts.StorageState) > 0 {
		if err := s.restoreState(opts.StorageState); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("restoring storage state: %w", err)
		}
	}
	return s, nil
}

func (s *chromeSession) Page() Page { return s.page }

// storedCookie is the serialized form of the session snapshot. The blob is
// plain JSON so an operator can inspect or delete it by hand.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

func (s *chromeSession) StorageState(ctx context.Context) ([]byte, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(s.taskCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return json.Marshal(out)
}

func (s *chromeSession) restoreState(blob []byte) error {
	var cookies []storedCookie
	if err := json.Unmarshal(blob, &cookies); err != nil {
		return err
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			e := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &e
		}
		params = append(params, p)
	}
	return chromedp.Run(s.taskCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
}

func (s *chromeSession) Close(ctx context.Context) error {
	s.taskCancel()
	s.allocCancel()
	return nil
}

// run executes actions against the tab with the per-action timeout applied.
// The caller context is only checked for prior cancellation: chromedp actions
// must run on the task context they were created with.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx := p.taskCtx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(tctx, p.timeout)
		defer cancel()
	}
	return chromedp.Run(tctx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) ClickNth(ctx context.Context, selector string, n int) error {
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll(%q);
		if (els.length <= %d) { throw new Error("no element at index"); }
		els[%d].click();
		return true;
	})()`, selector, n, n)
	var ok bool
	return p.run(ctx, chromedp.Evaluate(js, &ok))
}

func (p *chromePage) Fill(ctx context.Context, selector, value string) error {
	return p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *chromePage) SelectOption(ctx context.Context, selector, value string) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { throw new Error("select not found"); }
		el.value = %q;
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	})()`, selector, value)
	var ok bool
	return p.run(ctx, chromedp.Evaluate(js, &ok))
}

func (p *chromePage) Check(ctx context.Context, selector string) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { throw new Error("checkbox not found"); }
		el.checked = true;
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	})()`, selector)
	var ok bool
	return p.run(ctx, chromedp.Evaluate(js, &ok))
}

func (p *chromePage) Exists(ctx context.Context, selector string) (bool, error) {
	js := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
	var ok bool
	if err := p.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *chromePage) Count(ctx context.Context, selector string) (int, error) {
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	var n int
	if err := p.run(ctx, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *chromePage) Text(ctx context.Context, selector string) (string, error) {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return el ? el.innerText.trim() : "";
	})()`, selector)
	var s string
	if err := p.run(ctx, chromedp.Evaluate(js, &s)); err != nil {
		return "", err
	}
	return s, nil
}

func (p *chromePage) Texts(ctx context.Context, selector string) ([]string, error) {
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(el => el.innerText.trim())`, selector)
	var out []string
	if err := p.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, err
	}
	return buf, nil
}
