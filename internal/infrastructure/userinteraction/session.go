package userinteraction

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"listing-assistant/internal/application/port/input"
	"listing-assistant/internal/application/port/output"
)

// PageEnricher decorates the current page in the background.
type PageEnricher interface {
	Run(ctx context.Context) (int, error)
}

// Session is the interactive chat loop: it restores the page context, reads
// user lines and hands them to the controller.
type Session struct {
	console    *Console
	controller input.ConversationController
	enricher   PageEnricher
	logger     output.LoggerPort

	cancelEnrich context.CancelFunc
	wg           sync.WaitGroup
}

func NewSession(console *Console, controller input.ConversationController, enricher PageEnricher, logger output.LoggerPort) *Session {
	return &Session{
		console:    console,
		controller: controller,
		enricher:   enricher,
		logger:     logger,
	}
}

func (s *Session) Run(ctx context.Context) error {
	defer s.stopEnricher()

	s.console.ShowSystem(ctx, "Escribe tu pregunta. /clear borra la conversación, /quit sale.")
	s.pageLoaded(ctx)

	// The search context is only known once the page has loaded.
	if err := s.controller.SetSidebarOpen(ctx, true); err != nil {
		s.logger.Warn("failed to persist sidebar state", "error", err)
	}

	for {
		line, err := s.console.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return s.close(ctx)
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return s.close(ctx)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "/quit", "/salir", "/exit":
			return s.close(ctx)
		case "/clear", "/borrar":
			if err := s.controller.Clear(ctx); err != nil {
				s.logger.Error("failed to clear conversation", "error", err)
			}
			continue
		}

		res, err := s.controller.SubmitTurn(ctx, line, false)
		if err != nil {
			// The controller has already shown the failure in the chat.
			s.logger.Debug("turn failed", "error", err)
			continue
		}
		if res.Navigated {
			s.pageLoaded(ctx)
		}
	}
}

// pageLoaded runs the page-load lifecycle and restarts the badge enricher.
// A resumed turn may navigate again, so it loops until a page settles.
func (s *Session) pageLoaded(ctx context.Context) {
	for i := 0; i < 3; i++ {
		s.stopEnricher()

		res, err := s.controller.OnPageLoad(ctx)
		if err != nil {
			s.logger.Warn("page load handling failed", "error", err)
		}
		s.startEnricher(ctx)

		if res == nil || !res.Navigated {
			return
		}
	}
}

func (s *Session) startEnricher(ctx context.Context) {
	if s.enricher == nil {
		return
	}
	ectx, cancel := context.WithCancel(ctx)
	s.cancelEnrich = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		n, err := s.enricher.Run(ectx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("badge enrichment failed", "error", err, "badged", n)
			return
		}
		s.logger.Debug("badge enrichment finished", "badged", n)
	}()
}

func (s *Session) stopEnricher() {
	if s.cancelEnrich != nil {
		s.cancelEnrich()
		s.cancelEnrich = nil
	}
	s.wg.Wait()
}

func (s *Session) close(ctx context.Context) error {
	if err := s.controller.SetSidebarOpen(context.WithoutCancel(ctx), false); err != nil {
		s.logger.Warn("failed to persist sidebar state", "error", err)
	}
	return nil
}
