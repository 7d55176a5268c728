package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// actionTimeout bounds actions that rod retries while the element is
// covered, disabled or not writable.
const actionTimeout = 10 * time.Second

// Element is a located DOM node.
type Element struct {
	el *rod.Element
}

// Click performs a real mouse click at the element's position. It gives up
// after actionTimeout when the element stays covered or disabled.
func (e *Element) Click(ctx context.Context) error {
	el := e.el.Context(ctx).Timeout(actionTimeout)
	defer el.CancelTimeout()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// ClickProgrammatic dispatches a click from script. It works on elements
// hidden behind overlays where a mouse click lands elsewhere.
func (e *Element) ClickProgrammatic(ctx context.Context) error {
	if _, err := e.el.Context(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("programmatic click: %w", err)
	}
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	if err := e.el.Context(ctx).ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	return nil
}

// Enabled reports false for disabled controls and for lookup errors.
func (e *Element) Enabled(ctx context.Context) bool {
	disabled, err := e.el.Context(ctx).Disabled()
	return err == nil && !disabled
}

// Value returns the current value of an input.
func (e *Element) Value(ctx context.Context) string {
	v, err := e.el.Context(ctx).Property("value")
	if err != nil {
		return ""
	}
	return v.Str()
}

// Type replaces the content of an input with text.
func (e *Element) Type(ctx context.Context, text string) error {
	el := e.el.Context(ctx).Timeout(actionTimeout)
	defer el.CancelTimeout()

	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select input text: %w", err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	return nil
}

// Upload sets the files of a file input.
func (e *Element) Upload(ctx context.Context, paths ...string) error {
	if err := e.el.Context(ctx).SetFiles(paths); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	return e.el.Context(ctx).HTML()
}

// Eval runs js with this bound to the element and returns the raw result.
func (e *Element) Eval(ctx context.Context, js string) (any, error) {
	res, err := e.el.Context(ctx).Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return res.Value.Val(), nil
}
