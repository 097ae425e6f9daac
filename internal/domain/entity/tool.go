package entity

type ToolName string

const (
	ToolGetListings        ToolName = "get_listings"
	ToolGetPageSummary     ToolName = "get_page_summary"
	ToolGetPaginationInfo  ToolName = "get_pagination_info"
	ToolGetListingDetails  ToolName = "get_listing_details"
	ToolGetListingsDetails ToolName = "get_listings_details"
	ToolFilterListings     ToolName = "filter_listings"
	ToolApplySmartFilter   ToolName = "apply_smart_filter"
	ToolHighlightListings  ToolName = "highlight_listings"
	ToolShowAllListings    ToolName = "show_all_listings"
	ToolOpenListing        ToolName = "open_listing"

	ToolGoToPage           ToolName = "go_to_page"
	ToolApplyNativeFilters ToolName = "apply_native_filters"

	ToolExecuteScript ToolName = "execute_script"
)

func (t ToolName) String() string {
	return string(t)
}

// NavigationOutcome is returned by tools that change the browser location.
// The current page context ends once such a result is produced.
type NavigationOutcome struct {
	Navigating bool           `json:"navigating"`
	URL        string         `json:"url"`
	Page       int            `json:"page,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// ErrorResult is the {error} payload fed back to the model.
type ErrorResult struct {
	Error string `json:"error"`
}
