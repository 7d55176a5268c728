package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/linkedin"
)

// Cards can repeat after the results list is scrolled.
type duplicatesFilter struct {
	toggle
}

func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, p *linkedin.Postings) (*linkedin.Postings, Step, error) {
	initial := p.Len()
	seen := make(map[string]struct{}, initial)
	kept := make([]*linkedin.Posting, 0, initial)
	var dropped []string

	for _, posting := range p.Items {
		if _, ok := seen[posting.ID]; ok {
			dropped = append(dropped, posting.ID)
			continue
		}
		seen[posting.ID] = struct{}{}
		kept = append(kept, posting)
	}
	p.Items = kept

	if len(dropped) > 0 {
		deps.Logger.Debug("dropping duplicate postings", zap.Strings("posting_ids", dropped))
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}
