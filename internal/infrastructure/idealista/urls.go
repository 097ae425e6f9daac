package idealista

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"listing-assistant/internal/domain/entity"
)

const DefaultBaseURL = "https://www.idealista.com"

var (
	pageSegmentPattern   = regexp.MustCompile(`^pagina-\d+\.htm$`)
	filterSegmentPattern = regexp.MustCompile(`^con-`)
)

var bedroomTokens = []string{
	"de-un-dormitorio",
	"de-dos-dormitorios",
	"de-tres-dormitorios",
	"de-cuatro-cinco-habitaciones-o-mas",
}

// URLBuilder encodes the site's path-based URL scheme.
type URLBuilder struct {
	BaseURL string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &URLBuilder{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (b *URLBuilder) DetailURL(id string) string {
	return fmt.Sprintf("%s/inmueble/%s/", b.BaseURL, id)
}

// PageURL rewrites the page segment of a results URL. Page 1 has no segment.
func (b *URLBuilder) PageURL(currentURL string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("invalid page %d", page)
	}
	u, segments, err := splitPath(currentURL)
	if err != nil {
		return "", err
	}

	segments = dropSegments(segments, pageSegmentPattern)
	if page > 1 {
		segments = append(segments, fmt.Sprintf("pagina-%d.htm", page))
	}
	return joinPath(u, segments), nil
}

// FilteredSearchURL replaces the filter segment of a results URL and resets
// it to the first page.
func (b *URLBuilder) FilteredSearchURL(currentURL string, filters entity.NativeFilters) (string, error) {
	u, segments, err := splitPath(currentURL)
	if err != nil {
		return "", err
	}

	segments = dropSegments(segments, pageSegmentPattern)
	segments = dropSegments(segments, filterSegmentPattern)
	if tokens := filterTokens(filters); len(tokens) > 0 {
		segments = append(segments, "con-"+strings.Join(tokens, ","))
	}
	return joinPath(u, segments), nil
}

func filterTokens(f entity.NativeFilters) []string {
	var tokens []string
	if f.MaxPrice > 0 {
		tokens = append(tokens, fmt.Sprintf("precio-hasta_%d", f.MaxPrice))
	}
	if f.MinPrice > 0 {
		tokens = append(tokens, fmt.Sprintf("precio-desde_%d", f.MinPrice))
	}
	if f.MinSize > 0 {
		tokens = append(tokens, fmt.Sprintf("metros-cuadrados-mas-de_%d", f.MinSize))
	}
	if f.MaxSize > 0 {
		tokens = append(tokens, fmt.Sprintf("metros-cuadrados-menos-de_%d", f.MaxSize))
	}
	if f.MinBedrooms > 0 {
		start := f.MinBedrooms - 1
		if start >= len(bedroomTokens) {
			start = len(bedroomTokens) - 1
		}
		tokens = append(tokens, bedroomTokens[start:]...)
	}

	flags := []struct {
		on    bool
		token string
	}{
		{f.Elevator, "ascensor"},
		{f.Terrace, "terraza"},
		{f.AirConditioning, "aire-acondicionado"},
		{f.Parking, "garaje"},
		{f.Furnished, "amueblados"},
		{f.PetsAllowed, "mascotas"},
	}
	for _, fl := range flags {
		if fl.on {
			tokens = append(tokens, fl.token)
		}
	}
	return tokens
}

func splitPath(raw string) (*url.URL, []string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, nil, fmt.Errorf("not an absolute url: %q", raw)
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return u, segments, nil
}

func dropSegments(segments []string, re *regexp.Regexp) []string {
	out := segments[:0]
	for _, s := range segments {
		if !re.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func joinPath(u *url.URL, segments []string) string {
	path := "/" + strings.Join(segments, "/")
	if len(segments) > 0 && !pageSegmentPattern.MatchString(segments[len(segments)-1]) {
		path += "/"
	}
	out := *u
	out.Path = path
	out.RawPath = ""
	return out.String()
}
