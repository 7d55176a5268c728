package apply

import (
	"fmt"
	"path/filepath"
	"time"
)

const DefaultMaxPages = 3

type Timeouts struct {
	ApplyButton    time.Duration `mapstructure:"apply-button" validate:"gte=0"`
	Phone          time.Duration `mapstructure:"phone" validate:"gte=0"`
	NextAfterPhone time.Duration `mapstructure:"next-after-phone" validate:"gte=0"`
	FileInput      time.Duration `mapstructure:"file-input" validate:"gte=0"`
	Submit         time.Duration `mapstructure:"submit" validate:"gte=0"`
	Continue       time.Duration `mapstructure:"continue" validate:"gte=0"`
	// Click bounds a direct click, including opening the job card.
	Click time.Duration `mapstructure:"click" validate:"gte=0"`
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		ApplyButton:    20 * time.Second,
		Phone:          5 * time.Second,
		NextAfterPhone: 10 * time.Second,
		FileInput:      5 * time.Second,
		Submit:         15 * time.Second,
		Continue:       10 * time.Second,
		Click:          5 * time.Second,
	}
}

type Config struct {
	// MaxPages bounds the continue iterations of the step loop.
	MaxPages    int
	PhoneNumber string
	ResumePath  string
	Timeouts    Timeouts
}

func (c Config) normalize() (Config, error) {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}

	defaults := DefaultTimeouts()
	orDefault := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	orDefault(&c.Timeouts.ApplyButton, defaults.ApplyButton)
	orDefault(&c.Timeouts.Phone, defaults.Phone)
	orDefault(&c.Timeouts.NextAfterPhone, defaults.NextAfterPhone)
	orDefault(&c.Timeouts.FileInput, defaults.FileInput)
	orDefault(&c.Timeouts.Submit, defaults.Submit)
	orDefault(&c.Timeouts.Continue, defaults.Continue)
	orDefault(&c.Timeouts.Click, defaults.Click)

	if c.ResumePath != "" {
		abs, err := filepath.Abs(c.ResumePath)
		if err != nil {
			return c, fmt.Errorf("resolve resume path: %w", err)
		}
		c.ResumePath = abs
	}

	return c, nil
}
