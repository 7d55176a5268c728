package apply

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/pacing"
)

var ErrControlNotFound = errors.New("control not found")

// Control names a form element the machine looks for.
type Control int

const (
	ApplyButton Control = iota
	PhoneInput
	NextAfterPhoneButton
	FileInput
	SubmitButton
	ContinueButton
)

func (c Control) String() string {
	switch c {
	case ApplyButton:
		return "apply-button"
	case PhoneInput:
		return "phone-input"
	case NextAfterPhoneButton:
		return "next-after-phone-button"
	case FileInput:
		return "file-input"
	case SubmitButton:
		return "submit-button"
	case ContinueButton:
		return "continue-button"
	default:
		return "unknown"
	}
}

// Element is a located form control.
type Element interface {
	Click(ctx context.Context) error
	ClickProgrammatic(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
	Enabled(ctx context.Context) bool
	Value(ctx context.Context) string
	Type(ctx context.Context, text string) error
	Upload(ctx context.Context, paths ...string) error
}

// FormDriver is the live page as seen by the machine.
type FormDriver interface {
	// OpenDetail opens the posting detail pane.
	OpenDetail(ctx context.Context, p *linkedin.Posting) error
	AlreadyApplied(ctx context.Context) bool
	// Locate waits up to timeout for control. Absence is not an error.
	Locate(ctx context.Context, control Control, timeout time.Duration) (Element, bool)
	JobTitle(ctx context.Context) string
	Snapshot(ctx context.Context, reason string) linkedin.Diagnostic
}

type Pacer interface {
	Pause(ctx context.Context, name pacing.Delay) error
}
