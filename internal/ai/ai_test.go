package ai

import (
	"context"
	"errors"
	"testing"
)

type fixedEmbedder struct {
	calls int
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{float32(len(text))}, nil
}

func TestOnceBuildsProviderOnce(t *testing.T) {
	builds := 0
	shared := &fixedEmbedder{}
	once := NewOnce(func(context.Context) (Embedder, error) {
		builds++
		return shared, nil
	})

	for i := 0; i < 3; i++ {
		vec, err := once.Embed(context.Background(), "go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vec) != 1 || vec[0] != 2 {
			t.Fatalf("unexpected vector: %v", vec)
		}
	}

	if builds != 1 {
		t.Fatalf("expected provider to be built once, got %d", builds)
	}

	if shared.calls != 3 {
		t.Fatalf("expected 3 embed calls, got %d", shared.calls)
	}
}

func TestOnceRemembersBuildError(t *testing.T) {
	builds := 0
	buildErr := errors.New("no api key")
	once := NewOnce(func(context.Context) (Embedder, error) {
		builds++
		return nil, buildErr
	})

	for i := 0; i < 2; i++ {
		if _, err := once.Embed(context.Background(), "go"); !errors.Is(err, buildErr) {
			t.Fatalf("expected build error, got %v", err)
		}
	}

	if builds != 1 {
		t.Fatalf("expected a single build attempt, got %d", builds)
	}
}

func TestOnceWithoutFactory(t *testing.T) {
	if _, err := (&Once{}).Get(context.Background()); err == nil {
		t.Fatal("expected error without factory")
	}
}
