package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/go-codebuilder/internal/mirror"
	"github.com/jakoblorz/go-codebuilder/internal/server"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(app *App) *cobra.Command {
	var listen, watch string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace to browser clients",
		Long: `Serves the workspace over HTTP until interrupted:

  /ws       JSON-RPC over WebSocket; every change is broadcast as workspaceChanged
  /preview  the live preview page
  /export   the project document

Every change is saved to the session. With --watch, edits to files below
the directory are applied to the workspace as they happen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Listen
			}

			store, err := app.Workspace()
			if err != nil {
				return err
			}

			var watched *mirror.Mirror
			if watch != "" {
				if watched, err = newMirror(app, watch); err != nil {
					return err
				}
			}

			srv := server.New(store, app.Catalog)
			defer srv.Close()

			unsubscribe := store.Subscribe(func(workspace.Snapshot) {
				if err := app.Save(); err != nil {
					slog.Warn("failed to save session", "err", err)
				}
			})
			defer unsubscribe()

			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", listen, err)
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			httpServer := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			g.Go(func() error {
				if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			if watched != nil {
				g.Go(func() error {
					return watched.Watch(ctx, store, 0)
				})
			}

			slog.Info("serving workspace", "addr", "http://"+ln.Addr().String())
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", ln.Addr())

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from config)")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "Apply changes made below this directory")

	return cmd
}
