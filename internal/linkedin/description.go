package linkedin

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/utils"
)

// Description returns the text the card shows about the job. The boolean is
// false when none of the description selectors is present in the card.
func (c *Client) Description(ctx context.Context, p *Posting) (string, bool) {
	if p.Handle == nil {
		return "", false
	}

	html, err := p.Handle.HTML(ctx)
	if err != nil {
		c.logger.Debug("cannot read job card", zap.String("posting_id", p.ID), zap.Error(err))
		return "", false
	}

	return descriptionFromCard(html)
}

// descriptionFromCard walks descriptionSelectors in order. The first
// selector present decides, even when its text is empty.
func descriptionFromCard(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	for _, sel := range descriptionSelectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		return utils.CollapseSpaces(found.Text()), true
	}

	return "", false
}
