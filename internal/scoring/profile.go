package scoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/ai"
)

// Profile is the candidate side of every comparison in a run.
type Profile struct {
	ID     string
	Text   string
	Vector []float32
}

// Dimension returns the length of the profile vector.
func (p *Profile) Dimension() int {
	if p == nil {
		return 0
	}
	return len(p.Vector)
}

// DeriveProfileText builds the text that represents the candidate. Entities
// labeled as skills are joined with a single space. When the extractor is
// missing, fails, or finds no skills the resume text is returned verbatim.
func DeriveProfileText(ctx context.Context, extractor ai.EntityExtractor, resumeText string, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	if extractor == nil {
		logger.Info("skill extraction is not configured, using the full resume text")
		return resumeText
	}

	entities, err := extractor.ExtractEntities(ctx, resumeText)
	if err != nil {
		logger.Warn("skill extraction failed, using the full resume text", zap.Error(err))
		return resumeText
	}

	skills := SkillNames(entities)
	if len(skills) == 0 {
		logger.Info("no skills found in resume, using the full resume text")
		return resumeText
	}

	logger.Info("profile built from resume skills", zap.Strings("skills", skills))
	return strings.Join(skills, " ")
}

// SkillNames returns the text of every entity labeled as a skill, in order.
func SkillNames(entities []ai.Entity) []string {
	skills := make([]string, 0, len(entities))
	for _, entity := range entities {
		if entity.Label == ai.LabelSkill {
			skills = append(skills, entity.Text)
		}
	}
	return skills
}
