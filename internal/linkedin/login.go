package linkedin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/browser"
	"github.com/spigell/li-responder/internal/pacing"
	"github.com/spigell/li-responder/internal/secrets"
)

var (
	ErrEmailMismatch  = errors.New("email input mismatch")
	ErrNotLoggedIn    = errors.New("login did not reach feed or jobs page")
	errNoHandle       = errors.New("posting has no card handle")
	errNoVerification = errors.New("verification requested but no operator configured")
)

// Login signs in with creds. On failure it captures a login_error
// diagnostic before returning the error.
func (c *Client) Login(ctx context.Context, creds secrets.Credentials) (err error) {
	defer func() {
		if err != nil && ctx.Err() == nil {
			d := c.Capture(ctx, LoginError)
			c.logger.Error("login failed", append(d.Fields(), zap.Error(err))...)
		}
	}()

	c.logger.Info("navigating to login page")
	if err := c.session.Open(ctx, c.BaseURL+loginPath); err != nil {
		return err
	}

	email, ok := c.findFirst(ctx, emailField)
	if !ok {
		return fmt.Errorf("email field: %w", browser.ErrNotFound)
	}
	password, ok := c.findFirst(ctx, passwordField)
	if !ok {
		return fmt.Errorf("password field: %w", browser.ErrNotFound)
	}

	if err := email.Type(ctx, creds.Email); err != nil {
		return fmt.Errorf("enter email: %w", err)
	}
	if email.Value(ctx) != creds.Email {
		return ErrEmailMismatch
	}
	if err := password.Type(ctx, creds.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}

	submit, ok := c.session.Find(ctx, loginSubmit.Selector, loginSubmit.Timeout)
	if !ok {
		return fmt.Errorf("login submit button: %w", browser.ErrNotFound)
	}
	if err := submit.Click(ctx); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	if err := c.pacer.Pause(ctx, pacing.AfterLoginSubmit); err != nil {
		return err
	}

	source, _ := c.session.PageSource(ctx)
	if needsVerification(source) {
		c.logger.Warn("verification challenge detected")
		if c.operator == nil {
			return errNoVerification
		}
		if err := c.operator.WaitForManualAction(ctx, "Complete the verification in the browser window"); err != nil {
			return fmt.Errorf("manual verification: %w", err)
		}
	}

	err = c.session.WaitUntil(ctx, postLoginTimeout, func(ctx context.Context) bool {
		return loggedIn(c.session.CurrentURL(ctx))
	})
	if errors.Is(err, browser.ErrTimeout) {
		return ErrNotLoggedIn
	}
	if err != nil {
		return err
	}

	c.logger.Info("logged in")
	return nil
}

func (c *Client) findFirst(ctx context.Context, lookups []lookup) (*browser.Element, bool) {
	for _, l := range lookups {
		if el, ok := c.session.Find(ctx, l.Selector, l.Timeout); ok {
			return el, true
		}
		c.logger.Debug("trying alternative selector", zap.String("missed", l.Selector.String()))
	}
	return nil, false
}

func needsVerification(source string) bool {
	source = strings.ToLower(source)
	for _, marker := range verificationMarkers {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

func loggedIn(url string) bool {
	url = strings.ToLower(url)
	return strings.Contains(url, "feed") || strings.Contains(url, "jobs")
}
