package userinteraction

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/application/port/input"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/testutil"
)

type fakeController struct {
	mu        sync.Mutex
	turns     []string
	loads     int
	cleared   int
	sidebar   []bool
	events    []string
	navigates map[string]bool
}

func (f *fakeController) SubmitTurn(_ context.Context, text string, _ bool) (*input.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, text)
	return &input.TurnResult{Navigated: f.navigates[text]}, nil
}

func (f *fakeController) OnPageLoad(context.Context) (*input.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	f.events = append(f.events, "load")
	return nil, nil
}

func (f *fakeController) Clear(context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeController) SetSidebarOpen(_ context.Context, open bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sidebar = append(f.sidebar, open)
	f.events = append(f.events, fmt.Sprintf("sidebar:%t", open))
	return nil
}

func (f *fakeController) SetPendingInput(context.Context, string) error { return nil }
func (f *fakeController) History() []entity.ChatMessage                 { return nil }
func (f *fakeController) Status() input.Status                          { return input.StatusIdle }

type countingEnricher struct {
	mu   sync.Mutex
	runs int
}

func (e *countingEnricher) Run(context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs++
	return 0, nil
}

func TestSession_Run(t *testing.T) {
	ctrl := &fakeController{navigates: map[string]bool{"siguiente página": true}}
	enricher := &countingEnricher{}
	console := NewConsole(strings.NewReader("hola\n\n/clear\nsiguiente página\n/quit\nignorado\n"), io.Discard)

	s := NewSession(console, ctrl, enricher, testutil.NopLogger{})
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"hola", "siguiente página"}, ctrl.turns)
	assert.Equal(t, 1, ctrl.cleared)
	assert.Equal(t, 2, ctrl.loads, "initial load plus one after navigation")
	assert.Equal(t, 2, enricher.runs)
	assert.Equal(t, []bool{true, false}, ctrl.sidebar)
}

func TestSession_EOFEndsCleanly(t *testing.T) {
	ctrl := &fakeController{}
	s := NewSession(NewConsole(strings.NewReader("hola"), io.Discard), ctrl, nil, testutil.NopLogger{})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"hola"}, ctrl.turns)
	assert.Equal(t, 1, ctrl.loads)
}

func TestSession_OpensSidebarAfterFirstPageLoad(t *testing.T) {
	ctrl := &fakeController{}
	s := NewSession(NewConsole(strings.NewReader("/quit\n"), io.Discard), ctrl, nil, testutil.NopLogger{})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"load", "sidebar:true", "sidebar:false"}, ctrl.events)
}
