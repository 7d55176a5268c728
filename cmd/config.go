package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/li-responder/internal/apply"
	"github.com/spigell/li-responder/internal/browser"
	"github.com/spigell/li-responder/internal/pacing"
)

type Config struct {
	JobKeywords []string `mapstructure:"job-keywords" validate:"required,min=1,dive,required"`
	Locations   []string `mapstructure:"locations" validate:"required,min=1,dive,required"`
	// Posted is the LinkedIn f_TPR filter, for example r86400 for the last day.
	Posted string `mapstructure:"posted"`

	PhoneNumber    string `mapstructure:"phone-number"`
	ResumePDFPath  string `mapstructure:"resume-pdf-path" validate:"omitempty,file"`
	ResumeTextPath string `mapstructure:"resume-text-path" validate:"required"`

	MaxApplicationsPerDay int     `mapstructure:"max-applications-per-day" validate:"gt=0"`
	MinSimilarityScore    float64 `mapstructure:"min-similarity-score"`
	MaxApplicationPages   int     `mapstructure:"max-application-pages" validate:"gt=0"`

	ExcludeFile string        `mapstructure:"exclude-file"`
	Exclude     ExcludeConfig `mapstructure:"exclude"`

	Credentials CredentialsConfig       `mapstructure:"credentials"`
	Browser     browser.Config          `mapstructure:"browser"`
	Timeouts    apply.Timeouts          `mapstructure:"timeouts"`
	Pacing      map[string]pacing.Range `mapstructure:"pacing"`
	AI          AIConfig                `mapstructure:"ai"`

	LogFile string `mapstructure:"log-file"`
	EnvFile string `mapstructure:"env-file"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

// CredentialsConfig points at files holding the LinkedIn account. When
// unset LINKEDIN_EMAIL and LINKEDIN_PASSWORD are read from the environment.
type CredentialsConfig struct {
	EmailFile    string `mapstructure:"email-file"`
	PasswordFile string `mapstructure:"password-file"`
}

type AIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile      string `mapstructure:"api-key-file"`
	EmbeddingModel  string `mapstructure:"embedding-model"`
	ExtractionModel string `mapstructure:"extraction-model"`
	MaxRetries      int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength    int    `mapstructure:"max-log-length" validate:"gte=0"`
	// ExtractSkills derives the profile from skill entities of the resume
	// instead of the whole text.
	ExtractSkills bool `mapstructure:"extract-skills"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max-application-pages", apply.DefaultMaxPages)
	v.SetDefault("max-applications-per-day", 10)
	v.SetDefault("min-similarity-score", 0.5)
	v.SetDefault("resume-text-path", "resume.txt")
	v.SetDefault("env-file", ".env")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.screenshot-dir", ".")
	v.SetDefault("browser.navigation-timeout", time.Minute)

	timeouts := apply.DefaultTimeouts()
	v.SetDefault("timeouts.apply-button", timeouts.ApplyButton)
	v.SetDefault("timeouts.phone", timeouts.Phone)
	v.SetDefault("timeouts.next-after-phone", timeouts.NextAfterPhone)
	v.SetDefault("timeouts.file-input", timeouts.FileInput)
	v.SetDefault("timeouts.submit", timeouts.Submit)
	v.SetDefault("timeouts.continue", timeouts.Continue)
	v.SetDefault("timeouts.click", timeouts.Click)

	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 2000)
	v.SetDefault("ai.gemini.extract-skills", true)
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if _, err := pacing.DefaultProfile().WithOverrides(config.Pacing); err != nil {
		return nil, fmt.Errorf("invalid config: pacing: %w", err)
	}

	return &config, nil
}
