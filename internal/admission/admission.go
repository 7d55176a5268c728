// Package admission decides whether a scored posting is worth an application.
package admission

import "go.uber.org/zap"

// Admit reports whether score clears threshold.
func Admit(score, threshold float64) bool {
	return score >= threshold
}

// Policy holds the run-scoped threshold.
type Policy struct {
	Threshold float64
}

// Decision records one admission verdict for the audit log.
type Decision struct {
	Score     float64
	Threshold float64
	Admitted  bool
}

// Decide applies the policy to a score.
func (p Policy) Decide(score float64) Decision {
	return Decision{
		Score:     score,
		Threshold: p.Threshold,
		Admitted:  Admit(score, p.Threshold),
	}
}

// Fields returns the decision as structured log fields.
func (d Decision) Fields() []zap.Field {
	return []zap.Field{
		zap.Float64("similarity_score", d.Score),
		zap.Float64("min_similarity_score", d.Threshold),
		zap.Bool("admitted", d.Admitted),
	}
}
