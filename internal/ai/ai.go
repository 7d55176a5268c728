package ai

import (
	"context"
	"errors"
	"sync"
)

// Entity is a labeled span found in free text.
type Entity struct {
	Text  string
	Label string
}

// LabelSkill marks entities that describe a skill.
const LabelSkill = "SKILL"

// Embedder encodes text into a fixed-dimension vector. Identical text must
// produce identical vectors for a fixed model version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EntityExtractor finds labeled entities in resume text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

// Once lazily builds an Embedder the first time it is used and shares it
// for the rest of the process. A failed build is remembered and returned on
// every subsequent call.
type Once struct {
	build func(ctx context.Context) (Embedder, error)

	once     sync.Once
	embedder Embedder
	err      error
}

// NewOnce wraps the factory of the process-wide embedding provider.
func NewOnce(build func(ctx context.Context) (Embedder, error)) *Once {
	return &Once{build: build}
}

// Get returns the shared provider, building it on first use.
func (o *Once) Get(ctx context.Context) (Embedder, error) {
	o.once.Do(func() {
		if o.build == nil {
			o.err = errors.New("embedding provider factory is not set")
			return
		}
		o.embedder, o.err = o.build(ctx)
		if o.err == nil && o.embedder == nil {
			o.err = errors.New("embedding provider factory returned nil")
		}
	})
	return o.embedder, o.err
}

// Embed delegates to the shared provider.
func (o *Once) Embed(ctx context.Context, text string) ([]float32, error) {
	embedder, err := o.Get(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.Embed(ctx, text)
}
