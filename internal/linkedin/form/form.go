// Package form implements the Easy Apply form driver over a LinkedIn
// browser session.
package form

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/apply"
	"github.com/spigell/li-responder/internal/browser"
	"github.com/spigell/li-responder/internal/linkedin"
)

const titleTimeout = 2 * time.Second

var errNoHandle = errors.New("posting has no card handle")

var controls = map[apply.Control]browser.Selector{
	apply.ApplyButton:          linkedin.EasyApplyButton,
	apply.PhoneInput:           linkedin.PhoneInput,
	apply.NextAfterPhoneButton: linkedin.NextAfterPhone,
	apply.FileInput:            linkedin.FileInput,
	apply.SubmitButton:         linkedin.SubmitButton,
	apply.ContinueButton:       linkedin.ContinueButton,
}

type Driver struct {
	client  *linkedin.Client
	session *browser.Session
	logger  *zap.Logger
}

func New(client *linkedin.Client, logger *zap.Logger) *Driver {
	return &Driver{
		client:  client,
		session: client.Session(),
		logger:  logger,
	}
}

// OpenDetail clicks the job card so the detail pane shows the posting.
func (d *Driver) OpenDetail(ctx context.Context, p *linkedin.Posting) error {
	if p.Handle == nil {
		return errNoHandle
	}
	return p.Handle.Click(ctx)
}

func (d *Driver) AlreadyApplied(ctx context.Context) bool {
	return d.session.Has(ctx, linkedin.AppliedMarker)
}

func (d *Driver) Locate(ctx context.Context, control apply.Control, timeout time.Duration) (apply.Element, bool) {
	sel, ok := controls[control]
	if !ok {
		d.logger.Warn("no selector for control", zap.Stringer("control", control))
		return nil, false
	}

	el, ok := d.session.Find(ctx, sel, timeout)
	if !ok {
		return nil, false
	}
	return el, true
}

func (d *Driver) JobTitle(ctx context.Context) string {
	el, ok := d.session.Find(ctx, linkedin.JobTitle, titleTimeout)
	if !ok {
		return ""
	}
	text, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (d *Driver) Snapshot(ctx context.Context, reason string) linkedin.Diagnostic {
	return d.client.Capture(ctx, reason)
}

var _ apply.FormDriver = (*Driver)(nil)
