package output

import "listing-assistant/internal/domain/entity"

// SiteURLs knows the URL scheme of the listing site.
type SiteURLs interface {
	DetailURL(id string) string
	PageURL(currentURL string, page int) (string, error)
	FilteredSearchURL(currentURL string, filters entity.NativeFilters) (string, error)
}
