package output

import "context"

// NavigationGuard is called by navigating tools before the browser leaves the
// page, so the conversation can resume at the destination.
type NavigationGuard interface {
	PrepareNavigation(ctx context.Context, targetURL, message string) error
	// CancelNavigation undoes PrepareNavigation when the browser stayed put.
	CancelNavigation(ctx context.Context, targetURL string) error
}
