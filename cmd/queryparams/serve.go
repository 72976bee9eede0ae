package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/queryparams/internal/config"
	"github.com/vango-dev/queryparams/internal/errors"
	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/sanitize"
	"github.com/vango-dev/queryparams/pkg/server"
	"github.com/vango-dev/queryparams/pkg/session"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the query params server",
		Long: `Start the WebSocket server with the built-in demo script.

The demo script seeds the session's params from the browser URL on
first run and bumps a "visits" counter on every run.

Examples:
  queryparams serve
  queryparams serve --addr=:8080
  queryparams serve --config=queryparams.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			level, _ := cfg.SlogLevel()
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.ServerConfig(), demoApp, server.WithLogger(logger))
			if err := srv.Run(ctx); err != nil {
				return errors.New("E300").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: queryparams.{json,yaml,yml} in the working directory)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd)
}

// demoApp seeds params from the browser URL once and counts runs.
func demoApp(ctx context.Context, s *session.Session, params *queryparams.Store) error {
	if params.Len() == 0 {
		if err := seedFromQuery(params, s.QueryString()); err != nil {
			return err
		}
	}

	visits := 0
	if v, err := params.Get("visits"); err == nil {
		fmt.Sscanf(v, "%d", &visits)
	}
	if err := params.Set("visits", queryparams.Scalar(visits+1)); err != nil {
		return err
	}

	s.Logger().Info("script run",
		"visits", visits+1,
		"user_agent", s.Headers().Get("User-Agent"),
	)
	return nil
}

// seedFromQuery copies the app params of a raw query string into params,
// in the order the keys first appear. Keys with more than one value are
// stored as lists.
func seedFromQuery(params *queryparams.Store, raw string) error {
	parsed, _ := url.ParseQuery(raw)
	for _, k := range queryKeys(raw) {
		vs, ok := parsed[k]
		if !ok || sanitize.IsReserved(k) {
			continue
		}
		v := queryparams.Single(vs[0])
		if len(vs) > 1 {
			v = queryparams.Multi(vs...)
		}
		if err := params.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// queryKeys returns the distinct decoded keys of raw in first-seen order.
func queryKeys(raw string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, pair := range strings.Split(raw, "&") {
		k, _, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(k)
		if err != nil || k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
