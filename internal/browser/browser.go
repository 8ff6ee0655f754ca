// Package browser defines the page-automation capability consumed by site
// adapters, plus a Chrome-backed implementation and an in-memory fake.
// Adapters never talk to a driver library directly; they see only Page.
package browser

import (
	"context"
	"time"
)

// Page is one browser tab. Every method is bounded by the per-action timeout
// configured at launch. Selectors are CSS.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	ClickNth(ctx context.Context, selector string, n int) error
	Fill(ctx context.Context, selector, value string) error
	SelectOption(ctx context.Context, selector, value string) error
	Check(ctx context.Context, selector string) error
	Exists(ctx context.Context, selector string) (bool, error)
	Count(ctx context.Context, selector string) (int, error)
	Text(ctx context.Context, selector string) (string, error)
	Texts(ctx context.Context, selector string) ([]string, error)
	Content(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
}

// Session owns a browser process and one page for the duration of a single
// job run. It is never shared across runs.
type Session interface {
	Page() Page

	// StorageState snapshots the authenticated session (cookies) as an
	// opaque blob that a later Launch can restore.
	StorageState(ctx context.Context) ([]byte, error)

	Close(ctx context.Context) error
}

type Options struct {
	Headless bool
	Timeout  time.Duration // per action

	// StorageState is a blob previously returned by Session.StorageState;
	// nil starts a fresh unauthenticated session.
	StorageState []byte
}

type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}
