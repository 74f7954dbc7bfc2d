package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/ordex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP extraction server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}

		srv, err := server.NewServer(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				logger.Warn("failed to close LLM client", zap.Error(err))
			}
		}()

		httpSrv := &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: srv.SetupRouter(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("addr", httpSrv.Addr))
			serverErrors <- httpSrv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case sig := <-shutdown:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			// Outstanding requests may be waiting on a generative call.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout.Duration+5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", zap.Error(err))
				return httpSrv.Close()
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config)")
}
