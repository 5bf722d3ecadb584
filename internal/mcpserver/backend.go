package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/os-ghost/core/internal/ghosterr"
)

// BackendConfig configures the go-rod-driven execution backend.
type BackendConfig struct {
	DebuggerURL    string
	Launch         []string
	Headless       bool
	NavigateTimeout time.Duration
}

// Backend drives a single detached Chrome tab through go-rod. It is the
// side-effecting half of the MCP bridge's tool registry: inbound
// extension frames update BrowserState independently of whatever
// Backend does.
type Backend struct {
	cfg BackendConfig

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
}

// NewBackend constructs a Backend that lazily starts Chrome on first use.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}
	return &Backend{cfg: cfg}
}

func (b *Backend) ensureStarted(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return nil
		}
		_ = b.browser.Close()
		b.browser, b.page = nil, nil
	}

	controlURL, err := b.resolveControlURL()
	if err != nil {
		return fmt.Errorf("%w: resolve chrome control url: %v", ghosterr.ErrIO, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: connect to chrome: %v", ghosterr.ErrIO, err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: open page: %v", ghosterr.ErrIO, err)
	}

	b.browser, b.page = browser, page
	return nil
}

func (b *Backend) resolveControlURL() (string, error) {
	if b.cfg.DebuggerURL != "" {
		return b.cfg.DebuggerURL, nil
	}

	launch := launcher.New().Headless(b.cfg.Headless)
	if len(b.cfg.Launch) > 0 {
		launch = launch.Bin(b.cfg.Launch[0])
		for _, rawFlag := range b.cfg.Launch[1:] {
			flagStr := strings.TrimLeft(rawFlag, "-")
			name, val, hasVal := strings.Cut(flagStr, "=")
			if hasVal {
				launch = launch.Set(flags.Flag(name), val)
			} else {
				launch = launch.Set(flags.Flag(name))
			}
		}
	}
	return launch.Launch()
}

// Navigate loads url in the backend's page.
func (b *Backend) Navigate(ctx context.Context, url string) error {
	if err := b.ensureStarted(ctx); err != nil {
		return err
	}
	return b.page.Context(ctx).Timeout(b.cfg.NavigateTimeout).Navigate(url)
}

// Click clicks the first element matching selector.
func (b *Backend) Click(ctx context.Context, selector string) error {
	if err := b.ensureStarted(ctx); err != nil {
		return err
	}
	el, err := b.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: element %q not found: %v", ghosterr.ErrIO, selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Type inputs text into the first element matching selector.
func (b *Backend) Type(ctx context.Context, selector, text string) error {
	if err := b.ensureStarted(ctx); err != nil {
		return err
	}
	el, err := b.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: element %q not found: %v", ghosterr.ErrIO, selector, err)
	}
	return el.Input(text)
}

// Screenshot captures the current page, full-page if requested.
func (b *Backend) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := b.ensureStarted(ctx); err != nil {
		return nil, err
	}
	return b.page.Context(ctx).Screenshot(fullPage, nil)
}

// Close tears down the underlying browser, if started.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser, b.page = nil, nil
	return err
}
