package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/linkedin"
)

type dailyCapFilter struct {
	toggle
	limit int
}

// NewDailyCap keeps at most max-applications-per-day postings, in order.
func NewDailyCap() Filter {
	return &dailyCapFilter{}
}

func (f *dailyCapFilter) Name() string { return "daily_cap" }

func (f *dailyCapFilter) Validate(cfg *Config) error {
	if cfg == nil || cfg.DailyCap <= 0 {
		return errors.New("max applications per day must be positive")
	}
	f.limit = cfg.DailyCap
	return nil
}

func (f *dailyCapFilter) Apply(_ context.Context, deps Deps, p *linkedin.Postings) (*linkedin.Postings, Step, error) {
	initial := p.Len()

	dropped := p.Truncate(f.limit)
	if len(dropped) > 0 {
		deps.Logger.Info("daily application limit reached, dropping the rest",
			zap.Int("limit", f.limit),
			zap.Strings("dropped_postings", dropped),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *dailyCapFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit": strconv.Itoa(f.limit)},
	}
}
