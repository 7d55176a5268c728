// Package browser wraps a single go-rod browser session behind the small set
// of operations the bot needs: navigation, bounded element lookups, clicks,
// typing, uploads and diagnostics.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/utils"
)

const (
	defaultNavigationTimeout = 60 * time.Second
	pollInterval             = 250 * time.Millisecond
)

var (
	// ErrNotFound is returned when a lookup finds nothing.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned when a wait expires before its condition holds.
	ErrTimeout = errors.New("wait timed out")
)

type Config struct {
	Headless          bool          `mapstructure:"headless"`
	Bin               string        `mapstructure:"bin"`
	Flags             []string      `mapstructure:"flags"`
	ScreenshotDir     string        `mapstructure:"screenshot-dir"`
	NavigationTimeout time.Duration `mapstructure:"navigation-timeout"`
}

// Session owns one browser and the page the bot works in.
type Session struct {
	cfg      Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   *zap.Logger
}

// Launch starts a browser process and opens a blank page.
func Launch(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("start-maximized"))
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	for _, f := range cfg.Flags {
		l = l.Set(flags.Flag(f))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	logger.Info("browser launched", zap.Bool("headless", cfg.Headless), zap.String("control_url", controlURL))

	return &Session{
		cfg:      cfg,
		launcher: l,
		browser:  b,
		page:     page,
		logger:   logger,
	}, nil
}

// Close releases the page, the browser and its process. Safe to call twice.
func (s *Session) Close() error {
	if s == nil || s.browser == nil {
		return nil
	}

	err := s.browser.Close()
	s.launcher.Kill()
	s.browser = nil
	s.logger.Info("browser closed")

	return err
}

// Open navigates to url and waits for the load event.
func (s *Session) Open(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.cfg.NavigationTimeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}

	return nil
}

// Find waits up to timeout for the selector. Absence is reported through the
// boolean, never as an error.
func (s *Session) Find(ctx context.Context, sel Selector, timeout time.Duration) (*Element, bool) {
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	var (
		el  *rod.Element
		err error
	)
	if sel.XPath != "" {
		el, err = page.ElementX(sel.XPath)
	} else {
		el, err = page.Element(sel.CSS)
	}
	if err != nil {
		s.logger.Debug("element lookup missed", zap.String("selector", sel.String()), zap.Duration("timeout", timeout), zap.Error(err))
		return nil, false
	}

	return &Element{el: el.Context(ctx)}, true
}

// Has reports whether the selector matches right now without waiting.
func (s *Session) Has(ctx context.Context, sel Selector) bool {
	page := s.page.Context(ctx)

	var (
		ok  bool
		err error
	)
	if sel.XPath != "" {
		ok, _, err = page.HasX(sel.XPath)
	} else {
		ok, _, err = page.Has(sel.CSS)
	}

	return err == nil && ok
}

// FindAll returns every element currently matching a CSS selector.
func (s *Session) FindAll(ctx context.Context, sel Selector) ([]*Element, error) {
	page := s.page.Context(ctx)

	var (
		els rod.Elements
		err error
	)
	if sel.XPath != "" {
		els, err = page.ElementsX(sel.XPath)
	} else {
		els, err = page.Elements(sel.CSS)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", sel, err)
	}

	found := make([]*Element, 0, len(els))
	for _, el := range els {
		found = append(found, &Element{el: el})
	}

	return found, nil
}

// WaitUntil polls cond until it holds or timeout expires. It returns
// ErrTimeout on expiry and the context error on cancellation.
func (s *Session) WaitUntil(ctx context.Context, timeout time.Duration, cond func(ctx context.Context) bool) error {
	return waitUntil(ctx, timeout, pollInterval, cond)
}

func waitUntil(ctx context.Context, timeout, interval time.Duration, cond func(ctx context.Context) bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if cond(ctx) {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		if err := utils.WaitFor(ctx, interval); err != nil {
			return err
		}
	}
}

// CurrentURL returns the address of the page.
func (s *Session) CurrentURL(ctx context.Context) string {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// PageSource returns the serialized DOM of the page.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

// Scroll moves the viewport down by one screen height.
func (s *Session) Scroll(ctx context.Context) error {
	if _, err := s.page.Context(ctx).Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Screenshot writes a PNG of the viewport. Relative names are placed in the
// configured screenshot directory. It returns the written path.
func (s *Session) Screenshot(ctx context.Context, name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) && s.cfg.ScreenshotDir != "" {
		path = filepath.Join(s.cfg.ScreenshotDir, name)
	}

	data, err := s.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	return path, nil
}
