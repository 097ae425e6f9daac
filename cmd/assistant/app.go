package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"listing-assistant/internal/di"
	"listing-assistant/internal/domain/entity"
)

// stateStore is the part of the session store the management commands use.
type stateStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	ClearAPIKey(ctx context.Context) error
	Profile(ctx context.Context) (entity.Profile, error)
	SetProfile(ctx context.Context, p entity.Profile) error
	Memories(ctx context.Context) ([]string, error)
	AddMemory(ctx context.Context, memory string) error
	RemoveMemory(ctx context.Context, index int) error
	RemoveConversation(ctx context.Context, contextKey string) error
}

type app struct {
	cfg       di.Config
	openStore func() (stateStore, func(), error)
}

func newApp(cfg di.Config) *app {
	a := &app{cfg: cfg}
	a.openStore = func() (stateStore, func(), error) {
		c, err := di.NewContainer(a.cfg)
		if err != nil {
			return nil, nil, err
		}
		return c.Store, c.Close, nil
	}
	return a
}

// withStore opens the store for the duration of one command.
func (a *app) withStore(fn func(cmd *cobra.Command, args []string, s stateStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := a.openStore()
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd, args, s)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Asistente de búsqueda de pisos sobre el navegador",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newChatCmd(a),
		newKeyCmd(a),
		newProfileCmd(a),
		newMemoryCmd(a),
		newSessionCmd(a),
	)
	return root
}

func newChatCmd(a *app) *cobra.Command {
	var startURL string
	var headless bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Abre el navegador y empieza a conversar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if startURL != "" {
				cfg.StartURL = startURL
			}
			if cmd.Flags().Changed("headless") {
				cfg.BrowserHeadless = headless
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := di.NewContainer(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			chat, err := container.NewChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				container.Logger.Error("chat setup failed", "error", err)
				return err
			}
			defer chat.Close()

			container.Logger.Info("chat started", "url", chat.Page.CurrentURL())
			err = chat.Session.Run(ctx)
			container.Logger.Info("chat finished")
			return err
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "página de resultados con la que empezar")
	cmd.Flags().BoolVar(&headless, "headless", false, "ejecuta el navegador sin ventana")
	return cmd
}
