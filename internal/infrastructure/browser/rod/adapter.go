package rod

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/infrastructure/idealista"
)

var _ output.PagePort = (*PageAdapter)(nil)

var ErrStaleElement = errors.New("listing element belongs to a previous page load")

const (
	defaultTimeout    = 10 * time.Second
	defaultSlowMotion = 0
)

type BrowserConfig struct {
	Headless    bool
	SlowMotion  time.Duration
	Timeout     time.Duration
	NoSandbox   bool
	DevTools    bool
	UserDataDir string
	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

// PageAdapter drives the listing site in a single browser tab.
type PageAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration

	mu         sync.Mutex
	cards      []*rod.Element
	generation int
}

type cardHandle struct {
	index      int
	generation int
}

func (h cardHandle) Index() int { return h.index }

func NewPageAdapter(ctx context.Context, cfg BrowserConfig) (*PageAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var l *launcher.Launcher
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain")
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &PageAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (a *PageAdapter) QueryListings(ctx context.Context) ([]output.ListingElement, error) {
	var found rod.Elements
	for _, sel := range idealista.CardSelectors {
		els, err := a.page.Context(ctx).Elements(sel)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", sel, err)
		}
		if len(els) > 0 {
			found = els
			break
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cards = found
	handles := make([]output.ListingElement, len(found))
	for i := range found {
		handles[i] = cardHandle{index: i, generation: a.generation}
	}
	return handles, nil
}

func (a *PageAdapter) element(ctx context.Context, el output.ListingElement) (*rod.Element, error) {
	h, ok := el.(cardHandle)
	if !ok {
		return nil, fmt.Errorf("foreign listing element %T", el)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if h.generation != a.generation {
		return nil, ErrStaleElement
	}
	if h.index < 0 || h.index >= len(a.cards) {
		return nil, fmt.Errorf("listing element %d out of range", h.index)
	}
	return a.cards[h.index].Context(ctx).Timeout(a.timeout), nil
}

func (a *PageAdapter) ExtractFields(ctx context.Context, el output.ListingElement) (entity.ListingRecord, error) {
	e, err := a.element(ctx, el)
	if err != nil {
		return entity.ListingRecord{}, err
	}
	html, err := e.HTML()
	if err != nil {
		return entity.ListingRecord{}, fmt.Errorf("failed to get card HTML: %w", err)
	}
	return idealista.ParseListingCard(html, a.origin())
}

func (a *PageAdapter) SetVisibility(ctx context.Context, el output.ListingElement, visible bool) error {
	e, err := a.element(ctx, el)
	if err != nil {
		return err
	}
	_, err = e.Eval(`(visible) => { this.style.display = visible ? '' : 'none' }`, visible)
	return err
}

func (a *PageAdapter) SetHighlight(ctx context.Context, el output.ListingElement, color string) error {
	e, err := a.element(ctx, el)
	if err != nil {
		return err
	}
	_, err = e.Eval(`(color) => {
		this.style.boxShadow = color ? '0 0 0 3px ' + color : ''
		this.style.borderRadius = color ? '4px' : ''
	}`, color)
	return err
}

func (a *PageAdapter) SetBadge(ctx context.Context, el output.ListingElement, rating entity.EnergyRating) error {
	e, err := a.element(ctx, el)
	if err != nil {
		return err
	}
	_, err = e.Eval(`(label, color) => {
		let badge = this.querySelector('.la-energy-badge')
		if (!badge) {
			badge = document.createElement('span')
			badge.className = 'la-energy-badge'
			badge.style.cssText = 'position:absolute;top:8px;right:8px;z-index:10;padding:2px 8px;border-radius:4px;color:#fff;font:bold 12px sans-serif'
			if (getComputedStyle(this).position === 'static') this.style.position = 'relative'
			this.appendChild(badge)
		}
		badge.textContent = label
		badge.style.background = color
	}`, badgeLabel(rating), badgeColor(rating))
	return err
}

func (a *PageAdapter) PaginationState(ctx context.Context) (entity.PaginationState, error) {
	html, err := a.page.Context(ctx).Timeout(a.timeout).HTML()
	if err != nil {
		return entity.PaginationState{}, fmt.Errorf("failed to get page HTML: %w", err)
	}
	return idealista.ParsePagination(html, a.origin())
}

func (a *PageAdapter) CurrentURL() string {
	info, err := a.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (a *PageAdapter) Navigate(ctx context.Context, target string) error {
	a.mu.Lock()
	a.generation++
	a.cards = nil
	a.mu.Unlock()

	p := a.page.Context(ctx)
	if err := p.Navigate(target); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.Timeout(a.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

func (a *PageAdapter) OpenTab(ctx context.Context, target string) error {
	_, err := a.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	return nil
}

// EvalScript runs code as the body of an async function in the page and
// returns its result serialized as text.
func (a *PageAdapter) EvalScript(ctx context.Context, code string) (string, error) {
	res, err := a.page.Context(ctx).Timeout(a.timeout).Eval(`async () => {` + code + `
}`)
	if err != nil {
		return "", fmt.Errorf("script failed: %w", err)
	}
	if res.Value.Nil() {
		return "", nil
	}
	return res.Value.String(), nil
}

// FetchHTML downloads url from inside the page so the request carries the
// site's cookies.
func (a *PageAdapter) FetchHTML(ctx context.Context, target string) (string, error) {
	res, err := a.page.Context(ctx).Timeout(a.timeout).Eval(`async (u) => {
		const r = await fetch(u, { credentials: 'include' })
		return { status: r.status, body: r.ok ? await r.text() : '' }
	}`, target)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}

	if status := res.Value.Get("status").Int(); status != 200 {
		return "", &idealista.StatusError{URL: target, Code: status}
	}
	return res.Value.Get("body").Str(), nil
}

func (a *PageAdapter) origin() string {
	u, err := url.Parse(a.CurrentURL())
	if err != nil || u.Host == "" {
		return idealista.DefaultBaseURL
	}
	return u.Scheme + "://" + u.Host
}

func (a *PageAdapter) Close() {
	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher.Cleanup()
	}
}

var badgeColors = map[entity.EnergyRating]string{
	"A": "#00a651",
	"B": "#50b848",
	"C": "#bed630",
	"D": "#fff200",
	"E": "#fdb913",
	"F": "#f37021",
	"G": "#ed1c24",
}

func badgeColor(r entity.EnergyRating) string {
	if c, ok := badgeColors[r]; ok {
		return c
	}
	return "#9e9e9e"
}

func badgeLabel(r entity.EnergyRating) string {
	switch r {
	case entity.EnergyPending:
		return "En trámite"
	case entity.EnergyExempt:
		return "Exento"
	case entity.EnergyNotIndicated, "":
		return "Sin certificado"
	}
	return string(r)
}
