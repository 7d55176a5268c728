// Package apply drives a single posting through the Easy Apply form.
//
// The flow is an explicit state machine. Required steps (opening the detail
// pane, clicking the Easy Apply button) abandon the attempt on failure.
// Optional steps (phone, next after phone, resume upload) never do. The step
// loop is bounded by Config.MaxPages and a submission is final.
package apply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/logger"
	"github.com/spigell/li-responder/internal/pacing"
)

// Attempt is the record of one posting going through the flow.
type Attempt struct {
	PostingID string
	State     State
	Reason    string
	// Steps counts step loop iterations, MaxSteps is the budget.
	Steps          int
	MaxSteps       int
	ContinueClicks int
	PhoneEntered   bool
	ResumeUploaded bool
	Trace          []State
	Err            error
}

func (a *Attempt) enter(s State) {
	a.State = s
	a.Trace = append(a.Trace, s)
}

func (a *Attempt) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Stringer("state", a.State),
		zap.String("reason", a.Reason),
		zap.Int("steps", a.Steps),
		zap.Int("max_steps", a.MaxSteps),
		zap.Int("continue_clicks", a.ContinueClicks),
		zap.Bool("phone_entered", a.PhoneEntered),
		zap.Bool("resume_uploaded", a.ResumeUploaded),
	}
	if a.Err != nil {
		fields = append(fields, zap.Error(a.Err))
	}
	return fields
}

type Machine struct {
	driver FormDriver
	pacer  Pacer
	cfg    Config
	logger *zap.Logger
}

func New(driver FormDriver, pacer Pacer, cfg Config, logger *zap.Logger) (*Machine, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if pacer == nil {
		pacer = pacing.Zero()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Machine{
		driver: driver,
		pacer:  pacer,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// run holds what one attempt carries between states.
type run struct {
	attempt     *Attempt
	posting     *linkedin.Posting
	applyButton Element
	logger      *zap.Logger
}

// Run drives p until a terminal state and returns the attempt. The context
// is checked before every state. Cancellation ends the attempt Abandoned
// with ReasonCancelled and no further form actions.
func (m *Machine) Run(ctx context.Context, p *linkedin.Posting) *Attempt {
	r := &run{
		attempt: &Attempt{PostingID: p.ID, MaxSteps: m.cfg.MaxPages},
		posting: p,
		logger:  m.logger.With(logger.PostingFields(p.ID, p.Title, p.Company)...),
	}
	r.attempt.enter(Start)

	for !r.attempt.State.Terminal() {
		if err := ctx.Err(); err != nil {
			r.attempt.enter(m.cancel(r, err))
			break
		}
		r.attempt.enter(m.step(ctx, r))
	}

	return r.attempt
}

func (m *Machine) step(ctx context.Context, r *run) State {
	switch r.attempt.State {
	case Start:
		return CheckEasyApply
	case CheckEasyApply:
		return m.checkEasyApply(r)
	case OpenDetail:
		return m.openDetail(ctx, r)
	case CheckAlreadyApplied:
		return m.checkAlreadyApplied(ctx, r)
	case LocateApplyButton:
		return m.locateApplyButton(ctx, r)
	case ClickApplyButton:
		return m.clickApplyButton(ctx, r)
	case OptionalPhoneStep:
		return m.phoneStep(ctx, r)
	case OptionalNextAfterPhone:
		return m.nextAfterPhone(ctx, r)
	case OptionalFileUploadStep:
		return m.fileUploadStep(ctx, r)
	case StepLoop:
		return m.stepLoop(ctx, r)
	default:
		return m.fail(ctx, r, "unexpected state", fmt.Errorf("no transition from %s", r.attempt.State))
	}
}

func (m *Machine) checkEasyApply(r *run) State {
	if !r.posting.EasyApply {
		r.attempt.Reason = ReasonNoEasyApply
		r.logger.Info("job does not have easy apply, skipping")
		return SkippedNoEasyApply
	}
	return OpenDetail
}

func (m *Machine) openDetail(ctx context.Context, r *run) State {
	openCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Click)
	err := m.driver.OpenDetail(openCtx, r.posting)
	cancel()
	if err != nil {
		return m.fail(ctx, r, ReasonOpenDetailFailed, err)
	}
	if err := m.pacer.Pause(ctx, pacing.AfterDetailOpen); err != nil {
		return m.cancel(r, err)
	}
	return CheckAlreadyApplied
}

func (m *Machine) checkAlreadyApplied(ctx context.Context, r *run) State {
	if m.driver.AlreadyApplied(ctx) {
		r.attempt.Reason = ReasonAlreadyApplied
		r.logger.Info("job already applied, skipping")
		return AlreadyApplied
	}
	return LocateApplyButton
}

func (m *Machine) locateApplyButton(ctx context.Context, r *run) State {
	button, ok := m.driver.Locate(ctx, ApplyButton, m.cfg.Timeouts.ApplyButton)
	if !ok {
		return m.fail(ctx, r, ReasonApplyButtonMissing, ErrControlNotFound)
	}
	r.applyButton = button
	return ClickApplyButton
}

// clickApplyButton tries a real click first and falls back to a script
// click on the same element.
func (m *Machine) clickApplyButton(ctx context.Context, r *run) State {
	button := r.applyButton

	if err := button.ScrollIntoView(ctx); err != nil {
		r.logger.Debug("cannot scroll to easy apply button", zap.Error(err))
	}
	if err := m.pacer.Pause(ctx, pacing.BeforeApplyClick); err != nil {
		return m.cancel(r, err)
	}

	if err := m.click(ctx, button); err != nil {
		r.logger.Debug("direct click failed, trying programmatic click", zap.Error(err))
		if err := button.ClickProgrammatic(ctx); err != nil {
			return m.fail(ctx, r, ReasonApplyClickFailed, err)
		}
	}
	r.logger.Info("clicked easy apply button")

	if err := m.pacer.Pause(ctx, pacing.AfterApplyClick); err != nil {
		return m.cancel(r, err)
	}
	return OptionalPhoneStep
}

func (m *Machine) phoneStep(ctx context.Context, r *run) State {
	if m.cfg.PhoneNumber == "" {
		return OptionalNextAfterPhone
	}

	input, ok := m.driver.Locate(ctx, PhoneInput, m.cfg.Timeouts.Phone)
	if !ok {
		r.logger.Debug("phone number field not found")
		return OptionalNextAfterPhone
	}
	if input.Value(ctx) != "" {
		r.logger.Debug("phone number already filled")
		return OptionalNextAfterPhone
	}
	if err := input.Type(ctx, m.cfg.PhoneNumber); err != nil {
		r.logger.Debug("cannot enter phone number", zap.Error(err))
		return OptionalNextAfterPhone
	}

	r.attempt.PhoneEntered = true
	r.logger.Debug("phone number entered")

	if err := m.pacer.Pause(ctx, pacing.AfterPhoneEntry); err != nil {
		return m.cancel(r, err)
	}
	return OptionalNextAfterPhone
}

func (m *Machine) nextAfterPhone(ctx context.Context, r *run) State {
	button, ok := m.driver.Locate(ctx, NextAfterPhoneButton, m.cfg.Timeouts.NextAfterPhone)
	if !ok {
		r.logger.Debug("next button after phone not found")
		return OptionalFileUploadStep
	}
	if err := m.click(ctx, button); err != nil {
		r.logger.Debug("cannot click next button after phone", zap.Error(err))
		return OptionalFileUploadStep
	}

	if err := m.pacer.Pause(ctx, pacing.AfterNextClick); err != nil {
		return m.cancel(r, err)
	}
	return OptionalFileUploadStep
}

func (m *Machine) fileUploadStep(ctx context.Context, r *run) State {
	if m.cfg.ResumePath == "" {
		return StepLoop
	}

	input, ok := m.driver.Locate(ctx, FileInput, m.cfg.Timeouts.FileInput)
	if !ok {
		r.logger.Debug("resume upload field not found")
		return StepLoop
	}
	if err := input.Upload(ctx, m.cfg.ResumePath); err != nil {
		r.logger.Debug("cannot upload resume", zap.Error(err))
		return StepLoop
	}

	r.attempt.ResumeUploaded = true
	r.logger.Debug("resume uploaded", zap.String("path", m.cfg.ResumePath))

	if err := m.pacer.Pause(ctx, pacing.AfterUpload); err != nil {
		return m.cancel(r, err)
	}
	return StepLoop
}

// stepLoop looks for the submit control first and the continue control
// second on every page. Submission ends the attempt immediately.
func (m *Machine) stepLoop(ctx context.Context, r *run) State {
	a := r.attempt

	for a.Steps < a.MaxSteps {
		if err := ctx.Err(); err != nil {
			return m.cancel(r, err)
		}
		a.Steps++

		if submit, ok := m.driver.Locate(ctx, SubmitButton, m.cfg.Timeouts.Submit); ok && submit.Enabled(ctx) {
			return m.submit(ctx, r, submit)
		}

		next, ok := m.driver.Locate(ctx, ContinueButton, m.cfg.Timeouts.Continue)
		if !ok {
			return m.fail(ctx, r, ReasonNoControl, fmt.Errorf("step %d: %w", a.Steps, ErrControlNotFound))
		}
		if err := m.click(ctx, next); err != nil {
			return m.fail(ctx, r, ReasonContinueClickFailed, err)
		}
		a.ContinueClicks++
		r.logger.Debug("clicked continue", zap.Int("step", a.Steps))

		if err := m.pacer.Pause(ctx, pacing.AfterContinueClick); err != nil {
			return m.cancel(r, err)
		}
	}

	a.Reason = ReasonManualIntervention
	d := m.driver.Snapshot(ctx, linkedin.ApplicationError)
	r.logger.Error("reached end of application steps without submission, manual intervention required",
		append(a.Fields(), d.Fields()...)...)

	return Abandoned
}

func (m *Machine) submit(ctx context.Context, r *run, button Element) State {
	title := m.driver.JobTitle(ctx)

	if err := m.click(ctx, button); err != nil {
		return m.fail(ctx, r, ReasonSubmitClickFailed, err)
	}

	r.attempt.Reason = ReasonSubmitted
	r.logger.Info("application submitted", zap.String("job_title", title), zap.Int("step", r.attempt.Steps))

	// The submission stands even if the run is cancelled during this pause.
	_ = m.pacer.Pause(ctx, pacing.AfterSubmit)

	return Submitted
}

// click gives a direct click Timeouts.Click. A covered or disabled element
// keeps the browser retrying until the context ends.
func (m *Machine) click(ctx context.Context, el Element) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Click)
	defer cancel()
	return el.Click(ctx)
}

// fail abandons the attempt after a required step failed.
func (m *Machine) fail(ctx context.Context, r *run, reason string, err error) State {
	if ctx.Err() != nil {
		return m.cancel(r, ctx.Err())
	}

	r.attempt.Reason = reason
	r.attempt.Err = err

	d := m.driver.Snapshot(ctx, linkedin.ApplicationError)
	r.logger.Error("application attempt abandoned",
		append([]zap.Field{zap.String("reason", reason), zap.Stringer("at", r.attempt.State), zap.Error(err)}, d.Fields()...)...)

	return Abandoned
}

func (m *Machine) cancel(r *run, err error) State {
	r.attempt.Reason = ReasonCancelled
	r.attempt.Err = err
	r.logger.Warn("application attempt cancelled", zap.Stringer("after", r.attempt.Trace[len(r.attempt.Trace)-1]))

	return Abandoned
}
