package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brensch/vacuum/server"
	"github.com/brensch/vacuum/store"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}
			sc, err := a.cfg.Search.ToSearch(a.logger)
			if err != nil {
				return err
			}
			var archive *store.Archive
			if a.cfg.Output.ParquetDir != "" {
				archive = store.NewArchive(a.cfg.Output.ParquetDir, a.cfg.Output.FlushEvery)
				defer func() {
					paths, err := archive.Close()
					if err != nil {
						a.logger.Error("failed to close archive", "error", err)
						return
					}
					a.logger.Info("archive closed", "files", len(paths))
				}()
			}
			srv := server.NewServer(server.Config{
				Search:       sc,
				MaxCells:     a.cfg.Server.MaxCells,
				SolveTimeout: a.cfg.Server.SolveTimeout,
				Archive:      archive,
			}, a.logger)

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", "http://"+addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			a.logger.Info("shutting down", "grace", a.cfg.Server.ShutdownGrace)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownGrace)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
