package session

import "go.uber.org/zap"

// RunSummary counts what happened to the postings of one run.
type RunSummary struct {
	Seen                 int
	SkippedByScore       int
	SkippedNoDescription int
	Admitted             int
	Applied              int
	Failed               int
	AlreadyApplied       int
	SkippedNoEasyApply   int
	ScoreErrors          int
	Cancelled            bool
}

func (s *RunSummary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("seen", s.Seen),
		zap.Int("skipped_by_score", s.SkippedByScore),
		zap.Int("skipped_no_description", s.SkippedNoDescription),
		zap.Int("admitted", s.Admitted),
		zap.Int("applied", s.Applied),
		zap.Int("failed", s.Failed),
		zap.Int("already_applied", s.AlreadyApplied),
		zap.Int("skipped_no_easy_apply", s.SkippedNoEasyApply),
		zap.Int("score_errors", s.ScoreErrors),
		zap.Bool("cancelled", s.Cancelled),
	}
}
