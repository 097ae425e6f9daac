package session

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

const (
	ConversationTTL  = 24 * time.Hour
	NavigationWindow = 30 * time.Second

	APIKeyPrefix = "sk-ant-"

	keyAPIKey   = "claudeApiKey"
	keyProfile  = "userProfile"
	keyMemories = "userMemories"

	prefixConversation = "chat:"
	prefixPending      = "pending:"
	prefixDetail       = "detail:"
	prefixPrice        = "price:"
)

var pageSegment = regexp.MustCompile(`pagina-\d+\.htm$`)

// ContextKey identifies a search independent of the results page number:
// host, path without the pagina-N.htm segment, and the query string.
func ContextKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	key := u.Host + pageSegment.ReplaceAllString(u.Path, "")
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}

// ValidateAPIKey trims the credential and checks its prefix.
func ValidateAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", entity.NewError(entity.ErrMissingCredential, "empty key", nil)
	}
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return "", entity.NewError(entity.ErrInvalidCredential, "key must start with "+APIKeyPrefix, nil)
	}
	return key, nil
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the persistence adapter: it gives typed access to the durable and
// per-context scopes of a KeyValueStore and enforces freshness rules on read.
type Store struct {
	kv     output.KeyValueStore
	logger output.LoggerPort
	now    func() time.Time
}

func NewStore(kv output.KeyValueStore, logger output.LoggerPort, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.now()
}

// LoadConversation returns the saved state for a search context. State older
// than ConversationTTL is evicted and reported as absent.
func (s *Store) LoadConversation(ctx context.Context, contextKey string) (*entity.ConversationState, bool, error) {
	var state entity.ConversationState
	ok, err := s.kv.Get(ctx, output.ScopeContext, prefixConversation+contextKey, &state)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	if s.now().Sub(state.SavedAt) > ConversationTTL {
		s.logger.Info("conversation expired", "context", contextKey, "saved_at", state.SavedAt)
		if err := s.kv.Remove(ctx, output.ScopeContext, prefixConversation+contextKey); err != nil {
			return nil, false, fmt.Errorf("failed to evict conversation: %w", err)
		}
		return nil, false, nil
	}

	return &state, true, nil
}

func (s *Store) SaveConversation(ctx context.Context, contextKey string, state entity.ConversationState) error {
	state.SavedAt = s.now()
	state.ActiveFilters = state.ActiveFilters.Persistable()

	if err := s.kv.Set(ctx, output.ScopeContext, prefixConversation+contextKey, state); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *Store) RemoveConversation(ctx context.Context, contextKey string) error {
	if err := s.kv.Remove(ctx, output.ScopeContext, prefixConversation+contextKey); err != nil {
		return fmt.Errorf("failed to remove conversation: %w", err)
	}
	return nil
}

func (s *Store) SetPendingNavigation(ctx context.Context, contextKey, message string) error {
	marker := entity.PendingNavigation{Message: message, Timestamp: s.now()}
	if err := s.kv.Set(ctx, output.ScopeContext, prefixPending+contextKey, marker); err != nil {
		return fmt.Errorf("failed to save navigation marker: %w", err)
	}
	return nil
}

// ClearPendingNavigation drops the marker of a navigation that never happened.
func (s *Store) ClearPendingNavigation(ctx context.Context, contextKey string) error {
	if err := s.kv.Remove(ctx, output.ScopeContext, prefixPending+contextKey); err != nil {
		return fmt.Errorf("failed to remove navigation marker: %w", err)
	}
	return nil
}

// ConsumePendingNavigation removes the marker on every read and returns it
// only when it is younger than NavigationWindow.
func (s *Store) ConsumePendingNavigation(ctx context.Context, contextKey string) (*entity.PendingNavigation, bool, error) {
	var marker entity.PendingNavigation
	ok, err := s.kv.Get(ctx, output.ScopeContext, prefixPending+contextKey, &marker)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load navigation marker: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	if err := s.kv.Remove(ctx, output.ScopeContext, prefixPending+contextKey); err != nil {
		return nil, false, fmt.Errorf("failed to remove navigation marker: %w", err)
	}

	if age := s.now().Sub(marker.Timestamp); age >= NavigationWindow || age < 0 {
		s.logger.Debug("stale navigation marker discarded", "context", contextKey, "age", age.String())
		return nil, false, nil
	}
	return &marker, true, nil
}

// APIKey returns the stored credential, or "" when none is configured.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	var key string
	if _, err := s.kv.Get(ctx, output.ScopeDurable, keyAPIKey, &key); err != nil {
		return "", fmt.Errorf("failed to load api key: %w", err)
	}
	return strings.TrimSpace(key), nil
}

func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	key, err := ValidateAPIKey(key)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, output.ScopeDurable, keyAPIKey, key); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (s *Store) ClearAPIKey(ctx context.Context) error {
	if err := s.kv.Remove(ctx, output.ScopeDurable, keyAPIKey); err != nil {
		return fmt.Errorf("failed to remove api key: %w", err)
	}
	return nil
}

func (s *Store) Profile(ctx context.Context) (entity.Profile, error) {
	var p entity.Profile
	if _, err := s.kv.Get(ctx, output.ScopeDurable, keyProfile, &p); err != nil {
		return p, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

func (s *Store) SetProfile(ctx context.Context, p entity.Profile) error {
	if err := s.kv.Set(ctx, output.ScopeDurable, keyProfile, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Store) Memories(ctx context.Context) ([]string, error) {
	var memories []string
	if _, err := s.kv.Get(ctx, output.ScopeDurable, keyMemories, &memories); err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}
	return memories, nil
}

func (s *Store) AddMemory(ctx context.Context, memory string) error {
	memory = strings.TrimSpace(memory)
	if memory == "" {
		return fmt.Errorf("memory is empty")
	}
	memories, err := s.Memories(ctx)
	if err != nil {
		return err
	}
	return s.saveMemories(ctx, append(memories, memory))
}

// RemoveMemory deletes the memory at index (0-based).
func (s *Store) RemoveMemory(ctx context.Context, index int) error {
	memories, err := s.Memories(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(memories) {
		return fmt.Errorf("no memory at position %d", index+1)
	}
	return s.saveMemories(ctx, append(memories[:index], memories[index+1:]...))
}

func (s *Store) saveMemories(ctx context.Context, memories []string) error {
	if err := s.kv.Set(ctx, output.ScopeDurable, keyMemories, memories); err != nil {
		return fmt.Errorf("failed to save memories: %w", err)
	}
	return nil
}

func (s *Store) CachedDetail(ctx context.Context, id string) (*entity.DetailRecord, bool, error) {
	var d entity.DetailRecord
	ok, err := s.kv.Get(ctx, output.ScopeContext, prefixDetail+id, &d)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load detail %s: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}

func (s *Store) CacheDetail(ctx context.Context, d *entity.DetailRecord) error {
	if d.FetchedAt.IsZero() {
		d.FetchedAt = s.now()
	}
	if err := s.kv.Set(ctx, output.ScopeContext, prefixDetail+d.ID, d); err != nil {
		return fmt.Errorf("failed to cache detail %s: %w", d.ID, err)
	}
	return nil
}

// TrackPrice records the price seen for a listing and returns the change
// against the previous observation, or nil when the price did not move.
func (s *Store) TrackPrice(ctx context.Context, id string, price float64) (*entity.PriceChange, error) {
	if price <= 0 {
		return nil, nil
	}

	var h entity.PriceHistory
	ok, err := s.kv.Get(ctx, output.ScopeContext, prefixPrice+id, &h)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history %s: %w", id, err)
	}

	now := s.now()
	if !ok {
		h = entity.PriceHistory{FirstPrice: price, LastPrice: price, FirstSeenAt: now, LastSeenAt: now}
		if err := s.kv.Set(ctx, output.ScopeContext, prefixPrice+id, h); err != nil {
			return nil, fmt.Errorf("failed to save price history %s: %w", id, err)
		}
		return nil, nil
	}

	previous := h.LastPrice
	if previous != price {
		h.LastPrice = price
		h.LastSeenAt = now
		if err := s.kv.Set(ctx, output.ScopeContext, prefixPrice+id, h); err != nil {
			return nil, fmt.Errorf("failed to save price history %s: %w", id, err)
		}
	}

	if h.FirstPrice == price {
		return nil, nil
	}
	return &entity.PriceChange{
		FirstSeen:   h.FirstPrice,
		Previous:    previous,
		Current:     price,
		Delta:       price - h.FirstPrice,
		FirstSeenAt: h.FirstSeenAt,
	}, nil
}
