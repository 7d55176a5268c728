// Package linkedin drives the LinkedIn web UI through a browser session:
// login, job search and the card level lookups the orchestrator needs.
package linkedin

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/browser"
	"github.com/spigell/li-responder/internal/pacing"
)

const (
	baseURL = "https://www.linkedin.com"

	loginPath  = "/login"
	searchPath = "/jobs/search/"

	postLoginTimeout = 30 * time.Second
	cardsTimeout     = 30 * time.Second
	searchScrolls    = 3
)

// Pacer pauses between browser actions.
type Pacer interface {
	Pause(ctx context.Context, name pacing.Delay) error
}

// Operator is asked to resolve what the bot cannot, such as an email
// verification challenge.
type Operator interface {
	WaitForManualAction(ctx context.Context, message string) error
}

type Client struct {
	session  *browser.Session
	pacer    Pacer
	operator Operator
	logger   *zap.Logger
	BaseURL  string
}

func New(session *browser.Session, pacer Pacer, operator Operator, logger *zap.Logger) *Client {
	return &Client{
		session:  session,
		pacer:    pacer,
		operator: operator,
		logger:   logger,
		BaseURL:  baseURL,
	}
}

// Session exposes the underlying browser session to the form driver.
func (c *Client) Session() *browser.Session {
	return c.session
}

// Focus scrolls the posting card into view.
func (c *Client) Focus(ctx context.Context, p *Posting) error {
	if p.Handle == nil {
		return errNoHandle
	}
	return p.Handle.ScrollIntoView(ctx)
}
