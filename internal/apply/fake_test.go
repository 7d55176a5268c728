package apply

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/pacing"
)

var errBoom = errors.New("boom")

// fakeDriver records every call in order. Lookup results are produced by
// per-control hooks that receive the 1-based lookup count.
type fakeDriver struct {
	t *testing.T

	calls      []string
	openErr    error
	forbidOpen bool
	blockOpen  bool
	applied    bool
	title      string
	lookups    map[Control]int
	timeouts   map[Control]time.Duration
	controls   map[Control]func(n int) *fakeElement
	snapshots  []string
}

func newFakeDriver(t *testing.T) *fakeDriver {
	return &fakeDriver{
		t:        t,
		title:    "Go Engineer",
		lookups:  map[Control]int{},
		timeouts: map[Control]time.Duration{},
		controls: map[Control]func(n int) *fakeElement{},
	}
}

func (d *fakeDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// always makes control present on every lookup.
func (d *fakeDriver) always(control Control, el *fakeElement) {
	d.controls[control] = func(int) *fakeElement { return el }
}

func (d *fakeDriver) element(name string) *fakeElement {
	return &fakeElement{name: name, driver: d}
}

func (d *fakeDriver) OpenDetail(ctx context.Context, p *linkedin.Posting) error {
	if d.forbidOpen {
		d.t.Fatalf("detail opened for posting %s", p.ID)
	}
	d.record("open:%s", p.ID)
	if d.blockOpen {
		<-ctx.Done()
		return ctx.Err()
	}
	return d.openErr
}

func (d *fakeDriver) AlreadyApplied(context.Context) bool {
	d.record("already-applied?")
	return d.applied
}

func (d *fakeDriver) Locate(_ context.Context, control Control, timeout time.Duration) (Element, bool) {
	d.lookups[control]++
	d.timeouts[control] = timeout
	d.record("locate:%s", control)

	hook, ok := d.controls[control]
	if !ok {
		return nil, false
	}
	el := hook(d.lookups[control])
	if el == nil {
		return nil, false
	}
	return el, true
}

func (d *fakeDriver) JobTitle(context.Context) string {
	d.record("title")
	return d.title
}

func (d *fakeDriver) Snapshot(_ context.Context, reason string) linkedin.Diagnostic {
	d.snapshots = append(d.snapshots, reason)
	return linkedin.Diagnostic{Reason: reason, URL: "https://www.linkedin.com/jobs/view/1"}
}

func (d *fakeDriver) count(call string) int {
	n := 0
	for _, c := range d.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeElement struct {
	name   string
	driver *fakeDriver

	clickErr  error
	scriptErr error
	typeErr   error
	uploadErr error
	disabled  bool
	value     string
	typed     string
	uploaded  []string

	// blockClick makes Click wait for its context the way a covered
	// element does in the browser.
	blockClick bool
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.driver.record("click:%s", e.name)
	if e.blockClick {
		<-ctx.Done()
		return ctx.Err()
	}
	return e.clickErr
}

func (e *fakeElement) ClickProgrammatic(context.Context) error {
	e.driver.record("script-click:%s", e.name)
	return e.scriptErr
}

func (e *fakeElement) ScrollIntoView(context.Context) error {
	e.driver.record("scroll:%s", e.name)
	return nil
}

func (e *fakeElement) Enabled(context.Context) bool {
	return !e.disabled
}

func (e *fakeElement) Value(context.Context) string {
	return e.value
}

func (e *fakeElement) Type(_ context.Context, text string) error {
	e.driver.record("type:%s", e.name)
	if e.typeErr != nil {
		return e.typeErr
	}
	e.typed = text
	return nil
}

func (e *fakeElement) Upload(_ context.Context, paths ...string) error {
	e.driver.record("upload:%s", e.name)
	if e.uploadErr != nil {
		return e.uploadErr
	}
	e.uploaded = paths
	return nil
}

// recordingPacer keeps the names of requested pauses without sleeping.
type recordingPacer struct {
	pauses []pacing.Delay
	// cancel is invoked when the on delay is requested.
	on     pacing.Delay
	cancel context.CancelFunc
}

func (p *recordingPacer) Pause(ctx context.Context, name pacing.Delay) error {
	p.pauses = append(p.pauses, name)
	if p.cancel != nil && name == p.on {
		p.cancel()
	}
	return ctx.Err()
}
