package testutil

import (
	"context"
	"fmt"
	"sync"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.PagePort = (*FakePage)(nil)

type FakeElement int

func (e FakeElement) Index() int { return int(e) }

// FakePage is an in-memory results page. Visibility, highlights and badges
// are tracked per card index.
type FakePage struct {
	mu sync.Mutex

	Listings   []entity.ListingRecord
	URL        string
	Pagination entity.PaginationState

	Hidden     map[int]bool
	Highlights map[int]string
	Badges     map[int]entity.EnergyRating

	Navigated   []string
	NavigateErr error
	Opened      []string
	Scripts     []string

	ScriptResult string
	ScriptErr    error
	HTML         map[string]string
	QueryErr     error
}

func NewFakePage(url string, listings ...entity.ListingRecord) *FakePage {
	return &FakePage{
		Listings:   listings,
		URL:        url,
		Hidden:     make(map[int]bool),
		Highlights: make(map[int]string),
		Badges:     make(map[int]entity.EnergyRating),
		HTML:       make(map[string]string),
	}
}

func (p *FakePage) QueryListings(_ context.Context) ([]output.ListingElement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	out := make([]output.ListingElement, len(p.Listings))
	for i := range p.Listings {
		out[i] = FakeElement(i)
	}
	return out, nil
}

func (p *FakePage) ExtractFields(_ context.Context, el output.ListingElement) (entity.ListingRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := el.Index()
	if i < 0 || i >= len(p.Listings) {
		return entity.ListingRecord{}, fmt.Errorf("no listing at index %d", i)
	}
	rec := p.Listings[i]
	rec.Visible = !p.Hidden[i]
	return rec, nil
}

func (p *FakePage) SetVisibility(_ context.Context, el output.ListingElement, visible bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Hidden[el.Index()] = !visible
	return nil
}

func (p *FakePage) SetHighlight(_ context.Context, el output.ListingElement, color string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if color == "" {
		delete(p.Highlights, el.Index())
		return nil
	}
	p.Highlights[el.Index()] = color
	return nil
}

func (p *FakePage) SetBadge(_ context.Context, el output.ListingElement, rating entity.EnergyRating) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Badges[el.Index()] = rating
	return nil
}

func (p *FakePage) PaginationState(_ context.Context) (entity.PaginationState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Pagination, nil
}

func (p *FakePage) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.URL
}

func (p *FakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Navigated = append(p.Navigated, url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.URL = url
	return nil
}

func (p *FakePage) OpenTab(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Opened = append(p.Opened, url)
	return nil
}

func (p *FakePage) EvalScript(_ context.Context, code string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Scripts = append(p.Scripts, code)
	return p.ScriptResult, p.ScriptErr
}

func (p *FakePage) FetchHTML(_ context.Context, url string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	html, ok := p.HTML[url]
	if !ok {
		return "", fmt.Errorf("GET %s: 404", url)
	}
	return html, nil
}

// VisibleIDs returns the ids of cards that are currently shown.
func (p *FakePage) VisibleIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []string
	for i, l := range p.Listings {
		if !p.Hidden[i] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
