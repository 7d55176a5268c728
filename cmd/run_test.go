package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/li-responder/internal/filtering"
	"github.com/spigell/li-responder/internal/linkedin"
)

func TestHandleAction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)
	postings := &linkedin.Postings{Items: []*linkedin.Posting{{ID: "1", Title: "Go Engineer", Company: "Acme"}}}

	proceed, err := handleAction(PromptYes, log, postings)
	if err != nil || !proceed {
		t.Fatalf("yes must proceed, got %t %v", proceed, err)
	}

	proceed, err = handleAction(PromptNo, log, postings)
	if !errors.Is(err, errExit) || proceed {
		t.Fatalf("no must exit, got %t %v", proceed, err)
	}

	proceed, err = handleAction(PromptReportByCompanies, log, postings)
	if err != nil || proceed {
		t.Fatalf("report must return to the menu, got %t %v", proceed, err)
	}
	if logs.FilterField(zap.Int("postings count", 1)).Len() != 1 {
		t.Fatalf("expected report entry")
	}

	proceed, err = handleAction(PromptPostingsToFile, log, postings)
	if err != nil || proceed {
		t.Fatalf("dump must return to the menu, got %t %v", proceed, err)
	}
	dumped := logs.FilterMessage("dumping result to file").All()
	if len(dumped) != 1 {
		t.Fatalf("expected dump entry")
	}
	os.Remove(dumped[0].ContextMap()["filename"].(string))

	if _, err := handleAction("Maybe", log, postings); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LI_RESPONDER_TEST_EMAIL=me@example.com\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("LI_RESPONDER_TEST_EMAIL") })

	if err := loadEnvFile(path, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("LI_RESPONDER_TEST_EMAIL"); got != "me@example.com" {
		t.Fatalf("env not loaded, got %q", got)
	}

	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"), zap.NewNop()); err != nil {
		t.Fatalf("missing env file must be ignored, got %v", err)
	}
	if err := loadEnvFile("", zap.NewNop()); err != nil {
		t.Fatalf("empty path must be ignored, got %v", err)
	}
}

func TestReadResumeTextKeepsContent(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "resume.txt")
	content := "  Jane Doe\n\nGo, Kubernetes\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	got, err := readResumeText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Fatalf("resume text changed: %q", got)
	}

	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte(" \n\t"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	if _, err := readResumeText(blank); err == nil {
		t.Fatalf("expected error for blank resume")
	}
}

func TestLogFilters(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	steps := filtering.Default()
	filtering.DisableByName(steps, "exclude_file", "disabled by flag")

	logFilters(zap.New(core), steps)

	entries := logs.FilterMessage("filter status").All()
	if len(entries) != len(steps) {
		t.Fatalf("expected %d entries, got %d", len(steps), len(entries))
	}

	disabled := logs.FilterField(zap.String("name", "exclude_file")).All()
	if len(disabled) != 1 {
		t.Fatalf("expected exclude_file entry")
	}
	fields := disabled[0].ContextMap()
	if fields["enabled"] != false || fields["reason"] != "disabled by flag" {
		t.Fatalf("unexpected exclude_file status: %v", fields)
	}
}

func TestVerificationPromptAcceptsEnter(t *testing.T) {
	p := verificationPrompt("Complete the verification in the browser window")

	if !p.IsConfirm || p.Default != "y" {
		t.Fatalf("prompt must confirm on enter, got confirm=%t default=%q", p.IsConfirm, p.Default)
	}
}
