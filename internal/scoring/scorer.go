package scoring

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/spigell/li-responder/internal/ai"
)

// Scorer rates how close a posting description is to the candidate profile.
// The score is the raw dot product of the two embeddings. It is not
// normalized, so thresholds depend on the embedding model.
type Scorer struct {
	embedder ai.Embedder

	mu       sync.Mutex
	profiles map[string][]float32
}

// NewScorer returns a Scorer backed by the given embedding provider.
func NewScorer(embedder ai.Embedder) *Scorer {
	return &Scorer{
		embedder: embedder,
		profiles: make(map[string][]float32),
	}
}

// NewProfile embeds the profile text. The vector is reused for identical
// text and recomputed when the text changes.
func (s *Scorer) NewProfile(ctx context.Context, id, text string) (*Profile, error) {
	vector, err := s.profileVector(ctx, text)
	if err != nil {
		return nil, err
	}

	return &Profile{ID: id, Text: text, Vector: vector}, nil
}

// Score compares a posting description with a prepared profile.
func (s *Scorer) Score(ctx context.Context, profile *Profile, postingText string) (float64, error) {
	if profile == nil || len(profile.Vector) == 0 {
		return 0, &EmbeddingError{Op: "profile", Err: ErrEmptyText}
	}

	posting, err := s.embed(ctx, "posting", postingText)
	if err != nil {
		return 0, err
	}

	return dot(profile.Vector, posting)
}

// ScoreTexts compares two raw texts.
func (s *Scorer) ScoreTexts(ctx context.Context, profileText, postingText string) (float64, error) {
	profile, err := s.profileVector(ctx, profileText)
	if err != nil {
		return 0, err
	}

	posting, err := s.embed(ctx, "posting", postingText)
	if err != nil {
		return 0, err
	}

	return dot(profile, posting)
}

func (s *Scorer) profileVector(ctx context.Context, text string) ([]float32, error) {
	key := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	s.mu.Lock()
	cached, ok := s.profiles[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	vector, err := s.embed(ctx, "profile", text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profiles[key] = vector
	s.mu.Unlock()

	return vector, nil
}

func (s *Scorer) embed(ctx context.Context, op, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Op: op, Err: ErrEmptyText}
	}

	if s.embedder == nil {
		return nil, &EmbeddingError{Op: op, Err: fmt.Errorf("embedding provider is not configured")}
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &EmbeddingError{Op: op, Err: err}
	}

	if len(vector) == 0 {
		return nil, &EmbeddingError{Op: op, Err: fmt.Errorf("provider returned an empty vector")}
	}

	return vector, nil
}

func dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &EmbeddingError{Op: "compare", Err: fmt.Errorf("dimension mismatch: %d != %d", len(a), len(b))}
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, &EmbeddingError{Op: "compare", Err: fmt.Errorf("score is not finite")}
	}

	return sum, nil
}
