package linkedin

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spigell/li-responder/internal/browser"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"
)

type Postings struct {
	Items []*Posting
}

type Posting struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Location  string `json:"location,omitempty"`
	URL       string `json:"url,omitempty"`
	EasyApply bool   `json:"easy_apply"`

	// Handle is the job card in the results list.
	Handle *browser.Element `json:"-"`
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

func (p *Postings) Len() int {
	return len(p.Items)
}

// Exclude removes every posting whose field equals one of targets and
// returns the removed IDs. Order of the rest is preserved.
func (p *Postings) Exclude(name string, targets []string) []string {
	var excluded []string
	for idx := 0; idx < len(p.Items); {
		posting := p.Items[idx]
		if slices.Contains(targets, posting.GetStringField(name)) {
			p.RemoveByIndex(idx)
			excluded = append(excluded, posting.ID)
			continue
		}
		idx++
	}
	return excluded
}

// RemoveByIndex removes a posting keeping the order of the rest.
func (p *Postings) RemoveByIndex(idx int) {
	p.Items = slices.Delete(p.Items, idx, idx+1)
}

// Truncate keeps the first n postings and returns the IDs of the dropped ones.
func (p *Postings) Truncate(n int) []string {
	if n < 0 || n >= len(p.Items) {
		return nil
	}

	dropped := make([]string, 0, len(p.Items)-n)
	for _, posting := range p.Items[n:] {
		dropped = append(dropped, posting.ID)
	}
	p.Items = p.Items[:n]

	return dropped
}

// ReportByCompany groups postings by company for the confirmation menu.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := posting.Company
		if key == "" {
			key = "(unknown company)"
		}
		report[key] = append(report[key], map[string]string{
			"title":      posting.Title,
			"url":        posting.URL,
			"location":   posting.Location,
			"easy_apply": fmt.Sprintf("%t", posting.EasyApply),
		})
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
