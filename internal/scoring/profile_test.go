package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/li-responder/internal/ai"
)

type stubExtractor struct {
	entities []ai.Entity
	err      error
}

func (s *stubExtractor) ExtractEntities(context.Context, string) ([]ai.Entity, error) {
	return s.entities, s.err
}

const resume = "  Jane Doe\nBackend engineer.\n\nGo, PostgreSQL, Kubernetes  \n"

func TestDeriveProfileText(t *testing.T) {
	cases := []struct {
		name      string
		extractor ai.EntityExtractor
		want      string
	}{
		{
			name: "joins skills in order",
			extractor: &stubExtractor{entities: []ai.Entity{
				{Text: "Go", Label: ai.LabelSkill},
				{Text: "Jane Doe", Label: "PERSON"},
				{Text: "PostgreSQL", Label: ai.LabelSkill},
				{Text: "Kubernetes", Label: ai.LabelSkill},
			}},
			want: "Go PostgreSQL Kubernetes",
		},
		{
			name:      "no entities falls back to resume verbatim",
			extractor: &stubExtractor{},
			want:      resume,
		},
		{
			name: "no skill entities falls back to resume verbatim",
			extractor: &stubExtractor{entities: []ai.Entity{
				{Text: "Jane Doe", Label: "PERSON"},
			}},
			want: resume,
		},
		{
			name:      "extractor failure falls back to resume verbatim",
			extractor: &stubExtractor{err: errors.New("quota")},
			want:      resume,
		},
		{
			name:      "unconfigured extractor falls back to resume verbatim",
			extractor: nil,
			want:      resume,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveProfileText(context.Background(), tc.extractor, resume, nil)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSkillNames(t *testing.T) {
	got := SkillNames([]ai.Entity{
		{Text: "Go", Label: ai.LabelSkill},
		{Text: "Berlin", Label: "LOCATION"},
	})
	assert.Equal(t, []string{"Go"}, got)
}
