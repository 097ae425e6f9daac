package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/infrastructure/prompts"
	"listing-assistant/internal/usecase/session"
)

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Gestiona la API key de Claude",
	}

	set := &cobra.Command{
		Use:   "set [clave]",
		Short: "Guarda la API key (por defecto toma ANTHROPIC_API_KEY)",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			key := os.Getenv("ANTHROPIC_API_KEY")
			if len(args) == 1 {
				key = args[0]
			}
			if err := s.SetAPIKey(ctx, key); err != nil {
				return fmt.Errorf("%s", entity.UserMessage(err))
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "API key guardada.")
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Borra la API key guardada",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			if err := s.ClearAPIKey(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key borrada.")
			return nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Indica si hay una API key configurada",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			key, err := s.APIKey(ctx)
			if err != nil {
				return err
			}
			if key == "" {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Sin API key configurada.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key configurada: %s\n", maskKey(key))
			return nil
		}),
	}

	cmd.AddCommand(set, clearCmd, status)
	return cmd
}

func maskKey(key string) string {
	if len(key) <= len(session.APIKeyPrefix)+4 {
		return session.APIKeyPrefix + "…"
	}
	return key[:len(session.APIKeyPrefix)] + "…" + key[len(key)-4:]
}

type profileFlag struct {
	name   string
	usage  string
	target func(p *entity.Profile) *string
}

var profileFlags = []profileFlag{
	{"name", "nombre", func(p *entity.Profile) *string { return &p.Name }},
	{"situation", "situación personal o laboral", func(p *entity.Profile) *string { return &p.Situation }},
	{"income", "ingresos mensuales", func(p *entity.Profile) *string { return &p.Income }},
	{"pets", "mascotas", func(p *entity.Profile) *string { return &p.Pets }},
	{"preferences", "preferencias de vivienda", func(p *entity.Profile) *string { return &p.Preferences }},
	{"flexibility", "en qué puedes ceder", func(p *entity.Profile) *string { return &p.Flexibility }},
	{"notes", "otras notas", func(p *entity.Profile) *string { return &p.Notes }},
	{"market-context", "contexto del mercado para el asistente", func(p *entity.Profile) *string { return &p.MarketContext }},
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Gestiona tu perfil de búsqueda",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Muestra el perfil guardado",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			p, err := s.Profile(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if p.IsEmpty() {
				fmt.Fprintln(out, "Perfil vacío.")
				return nil
			}
			for _, f := range profileFlags {
				if v := *f.target(&p); v != "" {
					fmt.Fprintf(out, "%-15s %s\n", f.name+":", v)
				}
			}
			return nil
		}),
	}

	values := make([]string, len(profileFlags))
	var defaultContext bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Actualiza los campos indicados del perfil",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			p, err := s.Profile(ctx)
			if err != nil {
				return err
			}
			changed := 0
			for i, f := range profileFlags {
				if cmd.Flags().Changed(f.name) {
					*f.target(&p) = strings.TrimSpace(values[i])
					changed++
				}
			}
			if defaultContext {
				p.MarketContext = prompts.DefaultMarketContext
				changed++
			}
			if changed == 0 {
				return fmt.Errorf("no profile field given")
			}
			if err := s.SetProfile(ctx, p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Perfil guardado.")
			return nil
		}),
	}
	for i, f := range profileFlags {
		set.Flags().StringVar(&values[i], f.name, "", f.usage)
	}
	set.Flags().BoolVar(&defaultContext, "default-context", false, "usa el contexto de mercado por defecto")
	set.MarkFlagsMutuallyExclusive("market-context", "default-context")

	cmd.AddCommand(show, set)
	return cmd
}

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Gestiona las notas que el asistente recuerda",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las notas",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			memories, err := s.Memories(ctx)
			if err != nil {
				return err
			}
			if len(memories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hay notas.")
			}
			for i, m := range memories {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, m)
			}
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add <nota>",
		Short: "Añade una nota",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			return s.AddMemory(ctx, strings.Join(args, " "))
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <n>",
		Short: "Borra la nota número n",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			return s.RemoveMemory(ctx, n-1)
		}),
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Gestiona las conversaciones guardadas",
	}

	clearCmd := &cobra.Command{
		Use:   "clear <url>",
		Short: "Borra la conversación guardada para una búsqueda",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, s stateStore) error {
			ctx := cmd.Context()
			key := session.ContextKey(args[0])
			if err := s.RemoveConversation(ctx, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversación borrada: %s\n", key)
			return nil
		}),
	}

	cmd.AddCommand(clearCmd)
	return cmd
}
