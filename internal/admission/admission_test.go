package admission

import (
	"math"
	"testing"
)

func TestAdmit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		score     float64
		threshold float64
		want      bool
	}{
		{name: "above", score: 0.81, threshold: 0.8, want: true},
		{name: "equal is admitted", score: 0.8, threshold: 0.8, want: true},
		{name: "below", score: 0.79, threshold: 0.8, want: false},
		{name: "zero threshold", score: 0, threshold: 0, want: true},
		{name: "negative score", score: -0.2, threshold: 0, want: false},
		{name: "unnormalized score", score: 12.5, threshold: 0.9, want: true},
		{name: "threshold above one", score: 0.99, threshold: 1.5, want: false},
		{name: "nan is never admitted", score: math.NaN(), threshold: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Admit(tt.score, tt.threshold); got != tt.want {
				t.Fatalf("Admit(%v, %v) = %v, want %v", tt.score, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestAdmitMatchesComparisonOverGrid(t *testing.T) {
	t.Parallel()

	for s := -1.0; s <= 2.0; s += 0.05 {
		for th := -1.0; th <= 2.0; th += 0.05 {
			if Admit(s, th) != (s >= th) {
				t.Fatalf("Admit(%v, %v) disagrees with s >= t", s, th)
			}
			if Admit(s, th) != Admit(s, th) {
				t.Fatalf("Admit(%v, %v) is not stable", s, th)
			}
		}
	}
}

func TestPolicyDecide(t *testing.T) {
	t.Parallel()

	policy := Policy{Threshold: 0.6}

	decision := policy.Decide(0.75)
	if !decision.Admitted || decision.Score != 0.75 || decision.Threshold != 0.6 {
		t.Fatalf("unexpected decision: %+v", decision)
	}

	if policy.Decide(0.59).Admitted {
		t.Fatalf("expected rejection below threshold")
	}

	fields := decision.Fields()
	if len(fields) != 3 || fields[2].Key != "admitted" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}
