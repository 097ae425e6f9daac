package entity

import "time"

type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type ConversationState struct {
	Messages      []ChatMessage `json:"messages"`
	ActiveFilters FilterSpec    `json:"activeFilters"`
	SidebarOpen   bool          `json:"sidebarOpen"`
	PendingInput  string        `json:"pendingInput,omitempty"`
	SavedAt       time.Time     `json:"savedAt"`
}

// History returns the persisted user/assistant turns as model messages.
func (s ConversationState) History() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, TextMessage(m.Role, m.Content))
	}
	return out
}

type PendingNavigation struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Profile struct {
	Name          string `json:"name,omitempty"`
	Situation     string `json:"situation,omitempty"`
	Income        string `json:"income,omitempty"`
	Pets          string `json:"pets,omitempty"`
	Preferences   string `json:"preferences,omitempty"`
	Flexibility   string `json:"flexibility,omitempty"`
	Notes         string `json:"notes,omitempty"`
	MarketContext string `json:"marketContext,omitempty"`
}

func (p Profile) IsEmpty() bool {
	return p == Profile{}
}
