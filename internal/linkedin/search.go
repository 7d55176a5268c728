package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/pacing"
)

type SearchParams struct {
	// liparam is the query key used by buildParams.
	Keywords  []string `liparam:"keywords" mapstructure:"keywords"`
	Locations []string `liparam:"location" mapstructure:"locations"`
	EasyApply bool     `liparam:"f_AL" mapstructure:"easy-apply"`
	// Posted is a f_TPR value such as r86400 for the last day.
	Posted string `liparam:"f_TPR" mapstructure:"posted"`
	SortBy string `liparam:"sortBy" mapstructure:"sort-by"`
}

// cardScript collects what the card shows without opening it.
const cardScript = `() => {
	const text = (sel) => {
		const node = this.querySelector(sel);
		return node ? node.innerText.trim() : "";
	};
	const link = this.querySelector("a[href*='/jobs/view/']");
	const holder = this.closest("[data-job-id]");
	return {
		id: this.getAttribute("data-job-id") || (holder ? holder.getAttribute("data-job-id") : ""),
		title: text(".job-card-list__title, .job-card-container__link"),
		company: text(".job-card-container__primary-description, .artdeco-entity-lockup__subtitle"),
		location: text(".job-card-container__metadata-item, .artdeco-entity-lockup__caption"),
		url: link ? link.href : "",
		text: this.innerText || "",
	};
}`

type cardInfo struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Company  string `mapstructure:"company"`
	Location string `mapstructure:"location"`
	URL      string `mapstructure:"url"`
	Text     string `mapstructure:"text"`
}

// Search opens the results page for params and returns the discovered
// cards in page order. On failure it captures a search_error diagnostic.
func (c *Client) Search(ctx context.Context, params *SearchParams) (_ *Postings, err error) {
	defer func() {
		if err != nil && ctx.Err() == nil {
			d := c.Capture(ctx, SearchError)
			c.logger.Error("job search failed", append(d.Fields(), zap.Error(err))...)
		}
	}()

	target := c.searchURL(params)
	c.logger.Info("navigating to job search page", zap.String("url", target))

	if err := c.session.Open(ctx, target); err != nil {
		return nil, err
	}
	if _, ok := c.session.Find(ctx, jobCard, cardsTimeout); !ok {
		return nil, fmt.Errorf("no job cards within %s", cardsTimeout)
	}

	for range searchScrolls {
		if err := c.session.Scroll(ctx); err != nil {
			return nil, err
		}
		if err := c.pacer.Pause(ctx, pacing.SearchScroll); err != nil {
			return nil, err
		}
	}

	cards, err := c.session.FindAll(ctx, jobCard)
	if err != nil {
		return nil, err
	}

	postings := &Postings{}
	for idx, card := range cards {
		raw, err := card.Eval(ctx, cardScript)
		if err != nil {
			c.logger.Debug("cannot read job card", zap.Int("index", idx), zap.Error(err))
			continue
		}

		p, err := postingFromCard(raw, idx)
		if err != nil {
			c.logger.Debug("cannot decode job card", zap.Int("index", idx), zap.Error(err))
			continue
		}
		p.Handle = card
		postings.Items = append(postings.Items, p)
	}

	c.logger.Info("found job listings", zap.Int("count", postings.Len()))

	return postings, nil
}

func (c *Client) searchURL(params *SearchParams) string {
	return fmt.Sprintf("%s%s?%s", c.BaseURL, searchPath, buildParams(params).Encode())
}

func postingFromCard(raw any, idx int) (*Posting, error) {
	var info cardInfo
	if err := mapstructure.WeakDecode(raw, &info); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(info.ID)
	if id == "" {
		id = fmt.Sprintf("card-%d", idx)
	}

	return &Posting{
		ID:        id,
		Title:     strings.TrimSpace(info.Title),
		Company:   strings.TrimSpace(info.Company),
		Location:  strings.TrimSpace(info.Location),
		URL:       info.URL,
		EasyApply: strings.Contains(info.Text, "Easy Apply"),
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	v := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("liparam")
		if key == "" {
			continue
		}

		value := v.FieldByIndex(field.Index)
		switch value.Kind() {
		case reflect.Slice:
			// The site expects all terms in one space separated value.
			if terms, ok := value.Interface().([]string); ok && len(terms) > 0 {
				q.Set(key, strings.Join(terms, " "))
			}
		case reflect.Bool:
			if value.Bool() {
				q.Set(key, "true")
			}
		default:
			if s := fmt.Sprintf("%v", value.Interface()); s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
