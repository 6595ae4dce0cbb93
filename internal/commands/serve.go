package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/api"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the books as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				srv := api.NewServer(a.store, a.cfg.Owner, a.rules, a.logger)

				server := &http.Server{
					Addr:         addr,
					Handler:      srv.Router(),
					ReadTimeout:  15 * time.Second,
					WriteTimeout: 60 * time.Second,
					IdleTimeout:  60 * time.Second,
				}

				ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
				defer stop()

				go func() {
					<-ctx.Done()
					a.logger.Info("shutting down server")
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := server.Shutdown(shutdownCtx); err != nil {
						a.logger.Error("server shutdown error", "error", err)
					}
				}()

				a.logger.Info("starting server", "addr", addr, "owner", a.cfg.Owner)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				a.logger.Info("server stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from libros.yaml)")

	return cmd
}
