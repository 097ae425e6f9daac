package output

import "context"

type Scope string

const (
	// ScopeDurable survives across sessions and search contexts.
	ScopeDurable Scope = "sync"
	// ScopeContext holds per-browser state keyed by search context or listing id.
	ScopeContext Scope = "local"
)

// KeyValueStore persists JSON values. Get reports false when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, scope Scope, key string, dst any) (bool, error)
	Set(ctx context.Context, scope Scope, key string, value any) error
	Remove(ctx context.Context, scope Scope, key string) error
}
