package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-repository-switch/config"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/internal/web"
	"github.com/goliatone/go-repository-switch/pkg/di"
	"github.com/goliatone/go-repository-switch/pkg/logger"
)

type globals struct {
	configPath string
	out        string
	logs       io.Writer
}

// container builds the application. Logs go to stderr so that structured
// output on stdout stays parseable.
func (g *globals) container() (*di.Container, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(cfg, di.WithLogger(logger.NewLogger(cfg.ServiceName, logger.Options{
		Level:  cfg.Log.Level,
		IsProd: cfg.Log.Production,
		Output: g.logs,
	})))
}

// print writes v as json, yaml or, when text is given, with the text writer.
func (g *globals) print(w io.Writer, v any, text func(io.Writer) error) error {
	switch g.out {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return yaml.NewEncoder(w).Encode(v)
	default:
		if text == nil {
			return yaml.NewEncoder(w).Encode(v)
		}
		return text(w)
	}
}

func newRootCommand() *cobra.Command {
	g := &globals{out: "text", logs: os.Stderr}

	root := &cobra.Command{
		Use:           "workbench",
		Short:         "CRUD workbench over switchable data sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch g.out {
			case "text", "json", "yaml":
				return nil
			}
			return fmt.Errorf("--out must be text, json or yaml, got %q", g.out)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("WORKBENCH_CONFIG"), "Path to a YAML config file (env WORKBENCH_CONFIG)")
	root.PersistentFlags().StringVar(&g.out, "out", g.out, "Output format: text|json|yaml")

	root.AddCommand(newServeCommand(g))
	root.AddCommand(newSourcesCommand(g))
	root.AddCommand(newListCommand(g))
	return root
}

func newServeCommand(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.container()
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			handler, err := web.NewRouter(app)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      handler,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger().Info(ctx, "http server listening", logger.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			app.Logger().Info(shutdownCtx, "http server shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides http.addr")
	return cmd
}

func newSourcesCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Show or change the data source of each domain",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the active data source of every domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.container()
			if err != nil {
				return err
			}
			defer app.Close()

			sources, err := app.Sources()
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), sources, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DOMAIN\tTYPE\tLABEL\tAVAILABLE")
				for _, s := range sources.Domains {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", s.Domain, s.Type, s.Label, s.Available)
				}
				fmt.Fprintf(tw, "\nselector visible: %t\n", sources.SelectorVisible)
				return tw.Flush()
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <domain> <type>",
		Short: "Select the data source of a domain and persist the choice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDomain(args[0])
			if err != nil {
				return err
			}
			t, err := domain.ParseRepositoryType(args[1])
			if err != nil {
				return err
			}

			app, err := g.container()
			if err != nil {
				return err
			}
			defer app.Close()

			changed, err := app.SwitchRepository(cmd.Context(), d, t)
			if err != nil {
				return err
			}
			result := map[string]any{"domain": d, "type": t, "changed": changed}
			return g.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				if !changed {
					_, err := fmt.Fprintf(w, "%s already uses %s\n", d, t.Label())
					return err
				}
				_, err := fmt.Fprintf(w, "Switched %s to %s\n", d, t.Label())
				return err
			})
		},
	}

	var visible bool
	visibility := &cobra.Command{
		Use:   "visibility",
		Short: "Show or hide the source selector",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.container()
			if err != nil {
				return err
			}
			defer app.Close()
			return app.SetSelectorVisible(visible)
		},
	}
	visibility.Flags().BoolVar(&visible, "visible", true, "Whether the selector is shown")

	cmd.AddCommand(show, set, visibility)
	return cmd
}

func newListCommand(g *globals) *cobra.Command {
	var accountID int64
	cmd := &cobra.Command{
		Use:   "list <domain>",
		Short: "List the records of a domain from its active data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDomain(args[0])
			if err != nil {
				return err
			}
			app, err := g.container()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			var records any
			switch d {
			case domain.Posts:
				records, err = app.Posts().List(ctx, accountID)
			case domain.Users:
				records, err = app.Users().List(ctx, accountID)
			case domain.Accounts:
				records, err = app.Accounts().List(ctx)
			}
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), records, nil)
		},
	}
	cmd.Flags().Int64Var(&accountID, "account", 0, "Only list records owned by this account")
	return cmd
}
