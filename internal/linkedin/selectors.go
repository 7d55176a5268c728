package linkedin

import (
	"time"

	"github.com/spigell/li-responder/internal/browser"
)

// lookup is one entry of an ordered fallback list.
type lookup struct {
	Selector browser.Selector
	Timeout  time.Duration
}

var (
	emailField = []lookup{
		{Selector: browser.CSS("#username"), Timeout: 15 * time.Second},
		{Selector: browser.CSS("[name='session_key']"), Timeout: 10 * time.Second},
	}
	passwordField = []lookup{
		{Selector: browser.CSS("#password"), Timeout: 15 * time.Second},
		{Selector: browser.CSS("[name='session_password']"), Timeout: 10 * time.Second},
	}
	loginSubmit = lookup{Selector: browser.XPath("//button[@type='submit']"), Timeout: 10 * time.Second}

	jobCard = browser.CSS("div.job-card-container--clickable")

	// Ordered: the first selector present in the card decides the description.
	descriptionSelectors = []string{
		"div.job-card-container__metadata",
		"div[class*='job-card-list__insight']",
	}
)

// Application form selectors.
var (
	AppliedMarker   = browser.XPath(`//span[contains(text(), "Applied")]`)
	EasyApplyButton = browser.XPath(`//button[contains(@class, "jobs-apply-button") and contains(., "Easy Apply")]`)
	PhoneInput      = browser.XPath(`//input[contains(@placeholder, "Phone")]`)
	NextAfterPhone  = browser.XPath(`//button[contains(@aria-label, "Continue to next step") and contains(., "Next")]`)
	FileInput       = browser.XPath(`//input[@type="file"]`)
	SubmitButton    = browser.XPath(`//button[contains(@aria-label, "Submit application")]`)
	ContinueButton  = browser.XPath(`//button[contains(@aria-label, "Continue to next step")]`)
	JobTitle        = browser.XPath(`//h2[contains(@class, "jobs-details-top-card__job-title")]`)
)

// verificationMarkers appear on the page when LinkedIn asks for a code.
var verificationMarkers = []string{"verification", "enter code"}
