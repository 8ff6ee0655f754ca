package browser

import (
	"context"
	"fmt"
	"sync"
)

// FakeLauncher hands out scripted sessions for tests and for offline dry runs
// with the mock adapter.
type FakeLauncher struct {
	mu        sync.Mutex
	LaunchErr error
	Sessions  []*FakeSession
	LastOpts  Options
}

func NewFakeLauncher() *FakeLauncher { return &FakeLauncher{} }

func (l *FakeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	l.LastOpts = opts
	s := &FakeSession{
		FakePage: NewFakePage(),
		State:    append([]byte(nil), opts.StorageState...),
	}
	l.Sessions = append(l.Sessions, s)
	return s, nil
}

type FakeSession struct {
	*FakePage

	mu       sync.Mutex
	State    []byte
	StateErr error
	Closed   bool
}

func (s *FakeSession) Page() Page { return s.FakePage }

func (s *FakeSession) StorageState(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StateErr != nil {
		return nil, s.StateErr
	}
	if s.State == nil {
		return []byte(`[]`), nil
	}
	return s.State, nil
}

func (s *FakeSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

func (s *FakeSession) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}

// FakePage records actions and serves scripted answers keyed by selector.
type FakePage struct {
	mu sync.Mutex

	Visited []string
	Clicked []string
	Filled  map[string]string

	Present  map[string]bool
	Counts   map[string]int
	TextsBy  map[string][]string
	FailWith map[string]error // any action on this selector errors

	PageContent string
}

func NewFakePage() *FakePage {
	return &FakePage{
		Filled:   map[string]string{},
		Present:  map[string]bool{},
		Counts:   map[string]int{},
		TextsBy:  map[string][]string{},
		FailWith: map[string]error{},
	}
}

func (p *FakePage) fail(selector string) error {
	return p.FailWith[selector]
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	return nil
}

func (p *FakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return err
	}
	if !p.Present[selector] {
		return fmt.Errorf("fake page: %s not present", selector)
	}
	p.Clicked = append(p.Clicked, selector)
	return nil
}

func (p *FakePage) ClickNth(ctx context.Context, selector string, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return err
	}
	if p.Counts[selector] <= n {
		return fmt.Errorf("fake page: %s has no element %d", selector, n)
	}
	p.Clicked = append(p.Clicked, fmt.Sprintf("%s[%d]", selector, n))
	return nil
}

func (p *FakePage) Fill(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return err
	}
	if !p.Present[selector] {
		return fmt.Errorf("fake page: %s not present", selector)
	}
	p.Filled[selector] = value
	return nil
}

func (p *FakePage) SelectOption(ctx context.Context, selector, value string) error {
	return p.Fill(ctx, selector, value)
}

func (p *FakePage) Check(ctx context.Context, selector string) error {
	return p.Fill(ctx, selector, "checked")
}

func (p *FakePage) Exists(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return false, err
	}
	return p.Present[selector] || p.Counts[selector] > 0, nil
}

func (p *FakePage) Count(ctx context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return 0, err
	}
	if n, ok := p.Counts[selector]; ok {
		return n, nil
	}
	if p.Present[selector] {
		return 1, nil
	}
	return 0, nil
}

func (p *FakePage) Text(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts := p.TextsBy[selector]; len(ts) > 0 {
		return ts[0], nil
	}
	return "", nil
}

func (p *FakePage) Texts(ctx context.Context, selector string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.TextsBy[selector]...), nil
}

func (p *FakePage) Content(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PageContent, nil
}

func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (p *FakePage) DidVisit(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.Visited {
		if v == url {
			return true
		}
	}
	return false
}
