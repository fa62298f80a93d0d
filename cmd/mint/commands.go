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

	"github.com/spf13/cobra"

	"github.com/waldmeta/mint/config"
	"github.com/waldmeta/mint/counter"
	"github.com/waldmeta/mint/health"
	"github.com/waldmeta/mint/httpapi"
	"github.com/waldmeta/mint/rdf"
)

func rootCmd() *cobra.Command {
	return newRootCmd(os.Getenv)
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Mint short, unique identifiers",
		Long: `mint hands out short identifiers for entities and RDF blank nodes.

Each entity kind has a code prefix and a persistent counter. A new identifier
is the prefix followed by the z-base-32 encoding of the next counter value,
published under a canonical URI and, optionally, a short URI.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML, default: search for mint.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.backend, "store", "", "Counter store backend (redis, etcd, badger, memory)")

	withApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, getenv, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		}
	}

	cmd.AddCommand(
		newEntityCmd(withApp),
		bnodeCmd(withApp),
		idCmd(withApp),
		resetCmd(withApp),
		decodeCmd(withApp),
		serveCmd(withApp),
		healthCmd(withApp),
		versionCmd(),
	)

	return cmd
}

type appRunner func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func newEntityCmd(withApp appRunner) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "new <entity>",
		Short: "Mint identifiers for an entity kind",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			for i := 0; i < count; i++ {
				id, err := a.minter.NewEntity(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), id); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of identifiers to mint")
	return cmd
}

func bnodeCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "bnode",
		Short: "Mint a blank node identifier",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			id, err := a.minter.BNode(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), id)
		}),
	}
}

func idCmd(withApp appRunner) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "id <node>",
		Short: "Mint an identifier for a node, choosing the entity kind from its rdf:type values",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			g := rdf.NewGraph()
			for _, t := range types {
				g.Add(args[0], rdf.Type, t)
			}
			id, err := a.minter.NewID(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), id)
		}),
	}
	cmd.Flags().StringArrayVarP(&types, "type", "t", nil, "rdf:type IRI of the node (repeatable, in order)")
	return cmd
}

func resetCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <entity> [value]",
		Short: "Overwrite an entity counter (default 0)",
		Long: `Overwrite an entity counter. The next identifier minted is value+1.

Setting a counter below its current value makes mint hand out identifiers
that were already issued.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := a.minter.Reset(cmd.Context(), args[0], value); err != nil {
				return err
			}
			if value == "" {
				value = "0"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s counter set to %s\n", args[0], value)
			return nil
		}),
	}
}

func decodeCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <code|uri>...",
		Short: "Decode codes into entity kind and sequence number",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			for _, code := range args {
				d, err := a.minter.Parse(code)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), d); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func serveCmd(withApp appRunner) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := httpapi.New(a.minter, httpapi.Options{
				AllowReset: a.cfg.Server.AllowReset,
				Logger:     a.logger,
			})
			if a.cfg.Server.AllowReset {
				a.logger.Warn("counter reset endpoint is enabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func healthCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the counter store and its endpoints",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			endpoints, err := a.cfg.Store.Endpoints()
			if err != nil {
				return err
			}
			checks := []health.Status{}
			for _, ep := range endpoints {
				checks = append(checks, health.EndpointCheck(cmd.Context(), a.cfg.Store.Backend, ep))
			}
			if pinger, ok := a.store.(counter.Pinger); ok {
				checks = append(checks, health.StoreCheck(cmd.Context(), a.cfg.Store.Backend, pinger, 0))
			}
			if a.cfg.Store.Backend == config.BackendBadger && !a.cfg.Store.Badger.InMemory {
				checks = append(checks, health.DirCheck(a.cfg.Store.Badger.Dir))
			}

			status := health.Combine(checks...)
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if status.IsUnhealthy() {
				return fmt.Errorf("unhealthy: %s", status.Message)
			}
			return nil
		}),
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
