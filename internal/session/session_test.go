package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/li-responder/internal/admission"
	"github.com/spigell/li-responder/internal/apply"
	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/logger"
	"github.com/spigell/li-responder/internal/pacing"
	"github.com/spigell/li-responder/internal/scoring"
)

type description struct {
	text string
	ok   bool
}

type fakeSite struct {
	descriptions map[string]description
	focusErr     map[string]error
	focused      []string
}

func (s *fakeSite) Focus(_ context.Context, p *linkedin.Posting) error {
	s.focused = append(s.focused, p.ID)
	return s.focusErr[p.ID]
}

func (s *fakeSite) Description(_ context.Context, p *linkedin.Posting) (string, bool) {
	d, ok := s.descriptions[p.ID]
	if !ok {
		return "go kubernetes", true
	}
	return d.text, d.ok
}

type fakeScorer struct {
	scores map[string]float64
	errs   map[string]error
	texts  []string
}

func (s *fakeScorer) Score(_ context.Context, _ *scoring.Profile, text string) (float64, error) {
	s.texts = append(s.texts, text)
	if err := s.errs[text]; err != nil {
		return 0, err
	}
	if score, ok := s.scores[text]; ok {
		return score, nil
	}
	return 0.9, nil
}

type fakeApplier struct {
	states  map[string]apply.State
	reasons map[string]string
	panics  map[string]bool
	onRun   func(p *linkedin.Posting)
	applied []string
}

func (a *fakeApplier) Run(_ context.Context, p *linkedin.Posting) *apply.Attempt {
	a.applied = append(a.applied, p.ID)
	if a.onRun != nil {
		a.onRun(p)
	}
	if a.panics[p.ID] {
		panic("stale element reference")
	}

	state, ok := a.states[p.ID]
	if !ok {
		state = apply.Submitted
	}
	return &apply.Attempt{PostingID: p.ID, State: state, Reason: a.reasons[p.ID]}
}

type recordingPacer struct {
	pauses []pacing.Delay
}

func (p *recordingPacer) Pause(ctx context.Context, name pacing.Delay) error {
	p.pauses = append(p.pauses, name)
	return ctx.Err()
}

type fixture struct {
	site    *fakeSite
	scorer  *fakeScorer
	applier *fakeApplier
	pacer   *recordingPacer
	logs    *observer.ObservedLogs
	orch    *Orchestrator
}

func newFixture(threshold float64) *fixture {
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		site:    &fakeSite{descriptions: map[string]description{}, focusErr: map[string]error{}},
		scorer:  &fakeScorer{scores: map[string]float64{}, errs: map[string]error{}},
		applier: &fakeApplier{states: map[string]apply.State{}, reasons: map[string]string{}, panics: map[string]bool{}},
		pacer:   &recordingPacer{},
		logs:    logs,
	}
	f.orch = New(Deps{
		Site:    f.site,
		Scorer:  f.scorer,
		Applier: f.applier,
		Pacer:   f.pacer,
		Logger:  zap.New(core),
	}, admission.Policy{Threshold: threshold})
	return f
}

func postingList(ids ...string) *linkedin.Postings {
	p := &linkedin.Postings{}
	for _, id := range ids {
		p.Items = append(p.Items, &linkedin.Posting{ID: id, Title: "Go Engineer", Company: "Acme", EasyApply: true})
	}
	return p
}

func TestRunAppliesAdmittedPostings(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.site.descriptions["2"] = description{text: "cobol mainframe", ok: true}
	f.scorer.scores["cobol mainframe"] = 0.1

	summary := f.orch.Run(context.Background(), postingList("1", "2", "3"), &scoring.Profile{ID: "resume"})

	assert.Equal(t, []string{"1", "3"}, f.applier.applied)
	assert.Equal(t, &RunSummary{Seen: 3, SkippedByScore: 1, Admitted: 2, Applied: 2}, summary)

	decisions := auditEntries(f.logs).FilterMessage("admission decision").All()
	require.Len(t, decisions, 3)
	assert.Equal(t, false, decisions[1].ContextMap()["admitted"])
	assert.Equal(t, 0.1, decisions[1].ContextMap()["similarity_score"])
	assert.Equal(t, 2, auditEntries(f.logs).FilterMessage("application attempt").Len())
}

func TestThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	f := newFixture(0.9)
	summary := f.orch.Run(context.Background(), postingList("1"), &scoring.Profile{})

	assert.Equal(t, 1, summary.Applied)
}

func TestFailureInOnePostingDoesNotStopTheRun(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.applier.panics["2"] = true
	f.site.focusErr["3"] = errors.New("stale element")

	summary := f.orch.Run(context.Background(), postingList("1", "2", "3", "4"), &scoring.Profile{})

	assert.Equal(t, []string{"1", "2", "4"}, f.applier.applied)
	assert.Equal(t, 4, summary.Seen)
	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, f.logs.FilterMessage("error processing posting").Len())
}

func TestMissingDescriptionSkipsScoring(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.site.descriptions["1"] = description{}
	f.site.descriptions["2"] = description{text: "", ok: true}
	f.site.descriptions["3"] = description{text: "remote go role", ok: true}

	summary := f.orch.Run(context.Background(), postingList("1", "2", "3"), &scoring.Profile{})

	assert.Equal(t, []string{"remote go role"}, f.scorer.texts)
	assert.Equal(t, 2, summary.SkippedNoDescription)
	assert.Equal(t, []string{"3"}, f.applier.applied)
	assert.Equal(t, 1, f.logs.FilterMessage("no job description found, skipping").Len())
}

func TestScoringErrorSkipsPosting(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.site.descriptions["1"] = description{text: "broken", ok: true}
	f.scorer.errs["broken"] = &scoring.EmbeddingError{Op: "posting", Err: errors.New("unreachable")}

	summary := f.orch.Run(context.Background(), postingList("1", "2"), &scoring.Profile{})

	assert.Equal(t, 1, summary.ScoreErrors)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, []string{"2"}, f.applier.applied)
}

func TestAttemptOutcomesAreCounted(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.applier.states["2"] = apply.AlreadyApplied
	f.applier.states["3"] = apply.SkippedNoEasyApply
	f.applier.states["4"] = apply.Abandoned
	f.applier.reasons["4"] = apply.ReasonManualIntervention

	summary := f.orch.Run(context.Background(), postingList("1", "2", "3", "4"), &scoring.Profile{})

	assert.Equal(t, &RunSummary{
		Seen:               4,
		Admitted:           4,
		Applied:            1,
		AlreadyApplied:     1,
		SkippedNoEasyApply: 1,
		Failed:             1,
	}, summary)
}

func TestPacesBetweenPostingsAndApplications(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.applier.states["2"] = apply.SkippedNoEasyApply

	f.orch.Run(context.Background(), postingList("1", "2"), &scoring.Profile{})

	assert.Equal(t, []pacing.Delay{
		pacing.BetweenPostings,
		pacing.BetweenApplications,
		pacing.BetweenPostings,
	}, f.pacer.pauses)
}

func TestCancellationStopsBetweenPostings(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(0.5)
	f.applier.onRun = func(*linkedin.Posting) { cancel() }

	summary := f.orch.Run(ctx, postingList("1", "2", "3"), &scoring.Profile{})

	assert.True(t, summary.Cancelled)
	assert.Equal(t, 1, summary.Seen)
	assert.Equal(t, []string{"1"}, f.site.focused)
}

func TestCancelledAttemptIsNotAFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(0.5)
	f.applier.states["1"] = apply.Abandoned
	f.applier.reasons["1"] = apply.ReasonCancelled
	f.applier.onRun = func(*linkedin.Posting) { cancel() }

	summary := f.orch.Run(ctx, postingList("1"), &scoring.Profile{})

	assert.True(t, summary.Cancelled)
	assert.Zero(t, summary.Failed)
}

func TestDryRunNeverApplies(t *testing.T) {
	t.Parallel()

	f := newFixture(0.5)
	f.orch.DryRun = true

	summary := f.orch.Run(context.Background(), postingList("1", "2"), &scoring.Profile{})

	assert.Empty(t, f.applier.applied)
	assert.Equal(t, 2, summary.Admitted)
	assert.Zero(t, summary.Applied)
}

func TestSummaryFields(t *testing.T) {
	t.Parallel()

	fields := (&RunSummary{Seen: 3, Applied: 1}).Fields()
	require.Len(t, fields, 10)
	assert.Equal(t, "seen", fields[0].Key)
	assert.Equal(t, int64(3), fields[0].Integer)
}

func auditEntries(logs *observer.ObservedLogs) *observer.ObservedLogs {
	return logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == logger.AuditName })
}
