// Package session runs the discovered postings through scoring, admission
// and the application flow one at a time.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/admission"
	"github.com/spigell/li-responder/internal/apply"
	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/logger"
	"github.com/spigell/li-responder/internal/pacing"
	"github.com/spigell/li-responder/internal/scoring"
)

// Site is the part of the platform the orchestrator reads cards through.
type Site interface {
	Focus(ctx context.Context, p *linkedin.Posting) error
	// Description follows the ordered selector fallback of the card.
	// The boolean is false when no description element exists.
	Description(ctx context.Context, p *linkedin.Posting) (string, bool)
}

type Scorer interface {
	Score(ctx context.Context, profile *scoring.Profile, postingText string) (float64, error)
}

type Applier interface {
	Run(ctx context.Context, p *linkedin.Posting) *apply.Attempt
}

type Pacer interface {
	Pause(ctx context.Context, name pacing.Delay) error
}

// Deps aggregates the collaborators of an Orchestrator.
type Deps struct {
	Site    Site
	Scorer  Scorer
	Applier Applier
	Pacer   Pacer
	Logger  *zap.Logger
	// Audit receives one entry per decision and per attempt.
	Audit *zap.Logger
}

type Orchestrator struct {
	deps   Deps
	policy admission.Policy
	// DryRun scores and admits but never applies.
	DryRun bool
}

func New(deps Deps, policy admission.Policy) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Audit == nil {
		deps.Audit = deps.Logger.Named(logger.AuditName)
	}
	if deps.Pacer == nil {
		deps.Pacer = pacing.Zero()
	}

	return &Orchestrator{deps: deps, policy: policy}
}

// Run processes postings in order and returns the summary. A failure or a
// panic in one posting is counted and the loop moves on. Cancellation is
// checked between postings.
func (o *Orchestrator) Run(ctx context.Context, postings *linkedin.Postings, profile *scoring.Profile) *RunSummary {
	summary := &RunSummary{}
	total := postings.Len()

	for idx, p := range postings.Items {
		if ctx.Err() != nil {
			break
		}
		summary.Seen++

		log := o.deps.Logger.With(logger.PostingFields(p.ID, p.Title, p.Company)...).
			With(zap.String("progress", fmt.Sprintf("%d/%d", idx+1, total)))

		o.processIsolated(ctx, log, p, profile, summary)
	}

	if ctx.Err() != nil {
		summary.Cancelled = true
		o.deps.Logger.Warn("run cancelled", zap.Int("seen", summary.Seen), zap.Int("total", total))
	}

	return summary
}

func (o *Orchestrator) processIsolated(ctx context.Context, log *zap.Logger, p *linkedin.Posting, profile *scoring.Profile, summary *RunSummary) {
	defer func() {
		if r := recover(); r != nil {
			summary.Failed++
			log.Error("error processing posting", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	if err := o.process(ctx, log, p, profile, summary); err != nil {
		summary.Failed++
		log.Error("error processing posting", zap.Error(err))
	}
}

func (o *Orchestrator) process(ctx context.Context, log *zap.Logger, p *linkedin.Posting, profile *scoring.Profile, summary *RunSummary) error {
	if err := o.deps.Site.Focus(ctx, p); err != nil {
		return fmt.Errorf("focus job card: %w", err)
	}
	if err := o.deps.Pacer.Pause(ctx, pacing.BetweenPostings); err != nil {
		// Cancelled. Run reports it.
		return nil
	}

	text, ok := o.deps.Site.Description(ctx, p)
	if !ok {
		summary.SkippedNoDescription++
		log.Error("no job description found, skipping")
		return nil
	}
	if text == "" {
		summary.SkippedNoDescription++
		log.Error("empty job description, skipping")
		return nil
	}

	score, err := o.deps.Scorer.Score(ctx, profile, text)
	if err != nil {
		summary.ScoreErrors++
		log.Error("cannot score posting, skipping", zap.Error(err))
		return nil
	}

	decision := o.policy.Decide(score)
	audit := o.deps.Audit.With(logger.PostingFields(p.ID, p.Title, p.Company)...)
	audit.Info("admission decision", decision.Fields()...)

	if !decision.Admitted {
		summary.SkippedByScore++
		log.Info("skipping job due to low similarity", zap.Float64("similarity_score", score))
		return nil
	}
	summary.Admitted++

	if o.DryRun {
		log.Info("dry run, not applying", zap.Float64("similarity_score", score))
		return nil
	}

	log.Info("processing job", zap.Float64("similarity_score", score))
	attempt := o.deps.Applier.Run(ctx, p)
	audit.Info("application attempt", attempt.Fields()...)

	switch attempt.State {
	case apply.Submitted:
		summary.Applied++
	case apply.AlreadyApplied:
		summary.AlreadyApplied++
	case apply.SkippedNoEasyApply:
		summary.SkippedNoEasyApply++
	case apply.Abandoned:
		if attempt.Reason == apply.ReasonCancelled {
			return nil
		}
		summary.Failed++
	}

	// A posting without easy apply never touched the form.
	if attempt.State != apply.SkippedNoEasyApply {
		_ = o.deps.Pacer.Pause(ctx, pacing.BetweenApplications)
	}

	return nil
}
