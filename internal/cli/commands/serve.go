package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listatree/hypothesis/internal/server"
)

var (
	serveAddrFlag    string
	serveTimeoutFlag time.Duration
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the example database over HTTP",
		Long: `Start an HTTP server over the configured backend.

Routes:
  GET  /healthz
  GET  /v1/examples?descriptor=<descriptor>
  POST /v1/examples   {"descriptor": "...", "value": "..."} or {"descriptor": "...", "encoded": ...}`,
		Example: `  # Serve the sqlite store on the configured address
  EXAMPLEDB_DATABASE_FILE=examples.db exampledb serve

  # Listen on a specific address
  exampledb serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().DurationVar(&serveTimeoutFlag, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := s.cfg.Server.Addr
	if serveAddrFlag != "" {
		addr = serveAddrFlag
	}

	srvCfg := server.DefaultConfig(server.NewHandler(s.db, s.logger))
	srvCfg.Address = addr
	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(),
		"✓ Serving %s backend on http://%s\n", s.cfg.Backend.Type, srv.Addr())
	s.logger.Info("server started", zap.String("addr", srv.Addr()), zap.String("backend", s.cfg.Backend.Type))

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveTimeoutFlag)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
