package tool

import "listing-assistant/internal/application/port/output"

type Dependencies struct {
	Page     output.PagePort
	Listings Listings
	Details  Details
	URLs     output.SiteURLs
	Filters  output.FilterStatePort
	Guard    output.NavigationGuard
	Surface  output.ChatSurfacePort
	Logger   output.LoggerPort
}

// RegisterAll adds the fixed catalog in the order it is offered to the model.
func RegisterAll(registry output.ToolRegistry, deps Dependencies) {
	registry.Register(NewGetListingsTool(deps.Listings))
	registry.Register(NewGetPageSummaryTool(deps.Listings))
	registry.Register(NewGetPaginationInfoTool(deps.Listings))
	registry.Register(NewGetListingDetailsTool(deps.Details))
	registry.Register(NewGetListingsDetailsTool(deps.Details))
	registry.Register(NewFilterListingsTool(deps.Listings, deps.Filters))
	registry.Register(NewApplySmartFilterTool(deps.Listings, deps.Filters))
	registry.Register(NewHighlightListingsTool(deps.Listings))
	registry.Register(NewShowAllListingsTool(deps.Listings, deps.Filters))
	registry.Register(NewOpenListingTool(deps.Page, deps.URLs))
	registry.Register(NewGoToPageTool(deps.Page, deps.Listings, deps.URLs, deps.Guard))
	registry.Register(NewApplyNativeFiltersTool(deps.Page, deps.URLs, deps.Guard))
	registry.Register(NewExecuteScriptTool(deps.Page, deps.Surface, deps.Logger))
}
