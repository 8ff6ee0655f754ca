package adapter

import (
	"context"
	"fmt"
	"time"
)

func init() {
	Register("mock", func(env Env) SiteAdapter { return &Mock{env: env} })
}

// Mock simulates a site whose availability flips by the minute. Useful for
// dry runs and for exercising the whole pipeline offline.
type Mock struct {
	env Env

	// Now is overridable for deterministic tests.
	Now func() time.Time
}

func (m *Mock) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *Mock) Login(ctx context.Context) error {
	return m.env.Page.Navigate(ctx, m.env.BaseURL)
}

func (m *Mock) SearchSlots(ctx context.Context) ([]SlotResult, error) {
	checkIn := m.env.Criteria.String("check_in")
	if checkIn == "" {
		checkIn = "2026-01-01"
	}
	nights := m.env.Criteria.Int("nights", 1)
	guests := m.env.Criteria.Int("guests", 2)

	minute := m.now().Minute()
	if minute%2 != 0 {
		return nil, nil
	}

	return []SlotResult{
		{
			SlotID:   fmt.Sprintf("mock-%d", minute),
			Zone:     "A",
			SiteName: "Mock Camp A-12",
			CheckIn:  checkIn,
			Nights:   nights,
			Capacity: max(guests, 4),
		},
		{
			SlotID:   fmt.Sprintf("mock-%d-b", minute),
			Zone:     "RIVER",
			SiteName: "Mock Camp River-2",
			CheckIn:  checkIn,
			Nights:   nights,
			Capacity: max(guests, 2),
		},
	}, nil
}

func (m *Mock) BookSlot(ctx context.Context, slot SlotResult) (bool, error) {
	return true, nil
}
