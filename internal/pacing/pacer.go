// Package pacing injects human-like pauses between browser actions.
package pacing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/utils"
)

// Delay names a pause in the application flow.
type Delay string

const (
	AfterLoginSubmit    Delay = "after-login-submit"
	SearchScroll        Delay = "search-scroll"
	BetweenPostings     Delay = "between-postings"
	AfterDetailOpen     Delay = "after-detail-open"
	BeforeApplyClick    Delay = "before-apply-click"
	AfterApplyClick     Delay = "after-apply-click"
	AfterPhoneEntry     Delay = "after-phone-entry"
	AfterNextClick      Delay = "after-next-click"
	AfterUpload         Delay = "after-upload"
	AfterContinueClick  Delay = "after-continue-click"
	AfterSubmit         Delay = "after-submit"
	BetweenApplications Delay = "between-applications"
)

// Range is an inclusive interval a pause is drawn from.
type Range struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// Profile maps every named pause to its range.
type Profile map[Delay]Range

// DefaultProfile mirrors the cadence of a person filling the form by hand.
func DefaultProfile() Profile {
	return Profile{
		AfterLoginSubmit:    {Min: 5 * time.Second, Max: 5 * time.Second},
		SearchScroll:        {Min: 1500 * time.Millisecond, Max: 2500 * time.Millisecond},
		BetweenPostings:     {Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond},
		AfterDetailOpen:     {Min: time.Second, Max: 2 * time.Second},
		BeforeApplyClick:    {Min: time.Second, Max: time.Second},
		AfterApplyClick:     {Min: 2 * time.Second, Max: 3 * time.Second},
		AfterPhoneEntry:     {Min: time.Second, Max: time.Second},
		AfterNextClick:      {Min: 2 * time.Second, Max: 3 * time.Second},
		AfterUpload:         {Min: time.Second, Max: time.Second},
		AfterContinueClick:  {Min: time.Second, Max: 2 * time.Second},
		AfterSubmit:         {Min: 3 * time.Second, Max: 5 * time.Second},
		BetweenApplications: {Min: 10 * time.Second, Max: 20 * time.Second},
	}
}

// ZeroProfile has no pauses at all.
func ZeroProfile() Profile {
	return Profile{}
}

// WithOverrides returns a copy of p with the given ranges replaced. Keys
// are delay names as written in the config file.
func (p Profile) WithOverrides(overrides map[string]Range) (Profile, error) {
	merged := make(Profile, len(p)+len(overrides))
	for name, r := range p {
		merged[name] = r
	}

	known := DefaultProfile()
	for name, r := range overrides {
		delay := Delay(name)
		if _, ok := known[delay]; !ok {
			return nil, fmt.Errorf("unknown pacing delay %q", name)
		}
		if r.Min < 0 || r.Max < r.Min {
			return nil, fmt.Errorf("invalid range for %q: min %s, max %s", name, r.Min, r.Max)
		}
		merged[delay] = r
	}

	return merged, nil
}

// Pacer sleeps for randomized durations drawn from a profile.
type Pacer struct {
	profile Profile
	random  func() float64
	wait    func(ctx context.Context, d time.Duration) error
	logger  *zap.Logger
}

// New returns a Pacer for the profile.
func New(profile Profile, logger *zap.Logger) *Pacer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pacer{
		profile: profile,
		random:  rand.Float64,
		wait:    utils.WaitFor,
		logger:  logger,
	}
}

// Zero returns a Pacer that never sleeps. It still reports cancellation.
func Zero() *Pacer {
	return New(ZeroProfile(), nil)
}

// Duration draws the next pause length for name.
func (p *Pacer) Duration(name Delay) time.Duration {
	r, ok := p.profile[name]
	if !ok || r.Max <= 0 {
		return 0
	}
	if r.Max <= r.Min {
		return r.Min
	}

	span := float64(r.Max - r.Min)
	return r.Min + time.Duration(p.random()*span)
}

// Pause sleeps for the named delay. It returns the context error when ctx
// is done before or during the pause.
func (p *Pacer) Pause(ctx context.Context, name Delay) error {
	d := p.Duration(name)
	if d > 0 {
		p.logger.Debug("pausing", zap.String("delay", string(name)), zap.Duration("duration", d))
	}
	return p.wait(ctx, d)
}
