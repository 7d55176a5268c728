package linkedin

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/utils"
)

// Screenshot names per failure class.
const (
	LoginError       = "login_error"
	SearchError      = "search_error"
	ApplicationError = "application_error"
	CriticalError    = "critical_error"
)

const excerptLimit = 1000

// Diagnostic is what was captured about the page when something failed.
type Diagnostic struct {
	Reason     string
	Screenshot string
	URL        string
	Excerpt    string
}

func (d Diagnostic) Fields() []zap.Field {
	return []zap.Field{
		zap.String("diagnostic", d.Reason),
		zap.String("screenshot", d.Screenshot),
		zap.String("url", d.URL),
		zap.String("page_excerpt", d.Excerpt),
	}
}

// Capture takes a screenshot named after reason and records the current
// URL with the visible page text. Capture errors are logged, not returned.
func (c *Client) Capture(ctx context.Context, reason string) Diagnostic {
	d := Diagnostic{
		Reason: reason,
		URL:    c.session.CurrentURL(ctx),
	}

	path, err := c.session.Screenshot(ctx, reason+".png")
	if err != nil {
		c.logger.Warn("cannot capture screenshot", zap.String("reason", reason), zap.Error(err))
	} else {
		d.Screenshot = path
	}

	if source, err := c.session.PageSource(ctx); err == nil {
		d.Excerpt = pageExcerpt(source)
	}

	return d
}

// pageExcerpt returns the visible body text, truncated. Form values are not
// part of the text content so typed credentials never end up here.
func pageExcerpt(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return utils.TruncateForLog(html, excerptLimit)
	}

	body := doc.Find("body")
	body.Find("script, style, noscript").Remove()

	return utils.TruncateForLog(utils.CollapseSpaces(body.Text()), excerptLimit)
}
