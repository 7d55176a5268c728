package linkedin

import "testing"

func TestNeedsVerification(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"<h1>Let's do a quick Verification</h1>": true,
		"<label>Enter code</label>":              true,
		"<div>My Network</div>":                  false,
	}

	for source, want := range tests {
		if got := needsVerification(source); got != want {
			t.Fatalf("needsVerification(%q) = %t, want %t", source, got, want)
		}
	}
}

func TestLoggedIn(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"https://www.linkedin.com/feed/":                  true,
		"https://www.linkedin.com/jobs/search/?f_AL=true": true,
		"https://www.linkedin.com/checkpoint/challenge":   false,
		"about:blank":                                     false,
	}

	for url, want := range tests {
		if got := loggedIn(url); got != want {
			t.Fatalf("loggedIn(%q) = %t, want %t", url, got, want)
		}
	}
}
