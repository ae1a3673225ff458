// cmd/web/main.go
//
// Campus site – HTTP entry point.
//
// Start-up sequence (serve)
// -------------------------
//
//  1. Bootstrap a console logger so config errors are visible.
//
//  2. Load configuration (defaults → conf/.env → conf/global.yaml →
//     PORT / NODE_ENV / APP_ENV → CAMPUS_* → Vault references).
//
//  3. Start the daily rotating logger (tees to console in a TTY, or when
//     log.console is set).
//
//  4. Wire the app: views, stages, components, and optional database.
//
//  5. Serve until SIGINT or SIGTERM.  Development mode also runs the
//     live-reload WebSocket on port+1 and watches the template tree.
//
// Other commands
// --------------
//
//	campus routes                 – list every registered route.
//	campus hash-password [pw]     – bcrypt a password for auth.accounts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/app"
	"github.com/yanizio/campus/internal/auth"
	"github.com/yanizio/campus/internal/config"
	"github.com/yanizio/campus/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:           "campus",
		Short:         "Campus site server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&root, "root", "", "project root (default: CAMPUS_ROOT or the nearest directory holding conf/)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root)
		},
	}
	cmd.AddCommand(serve, routesCmd(&root), hashCmd())
	// Bare `campus` serves, like the classic `node server.js`.
	cmd.RunE = serve.RunE
	return cmd
}

/*──────────────────────────── serve ──────────────────────────────────────*/

func runServe(ctx context.Context, root string) error {
	boot := logger.Bootstrap()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.Options{Root: root})
	if err != nil {
		boot.Errorw("config load failed", "err", err)
		return err
	}

	log, err := logger.New(cfg.Paths.Root, logger.Options{
		Level: cfg.Log.Level,
		Tee:   cfg.Log.Console || logger.RunningInTTY(),
	})
	if err != nil {
		boot.Errorw("logger init failed", "err", err)
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, app.Options{Log: log})
	if err != nil {
		log.Errorw("app wiring failed", "err", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnw("close", "err", err)
		}
	}()

	log.Infow("server starting",
		"addr", cfg.HTTP.Addr(), "mode", cfg.Env.Mode, "live_reload", cfg.LiveReload())
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("server stopped", "err", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

/*──────────────────────────── routes ─────────────────────────────────────*/

func routesCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Bootstrap()
			zap.ReplaceGlobals(zap.NewNop())

			cfg, err := config.Load(cmd.Context(), config.Options{Root: *root})
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, app.Options{Log: zap.S()})
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tPATTERN\tSTAGES")
			for _, r := range a.Routes() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Method, r.Pattern, r.Stages)
			}
			return tw.Flush()
		},
	}
}

/*──────────────────────────── hash-password ──────────────────────────────*/

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.accounts (reads stdin without an argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := ""
			if len(args) == 1 {
				pw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if pw == "" {
				return errors.New("empty password")
			}
			h, err := auth.Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
