package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evently-app/evently/internal/web"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queries := newQueries(cfg, newClient(cfg))
		queries.Warm(ctx)
		srv, err := web.NewServer(queries, web.Options{
			APIURL:      cfg.APIBaseURL(),
			RenderWait:  cfg.Server.RenderWait(),
			CORSOrigins: cfg.Server.CORSOrigins,
		})
		if err != nil {
			return eris.Wrap(err, "serve: build server")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		hs := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = hs.Shutdown(sctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("api_url", cfg.APIBaseURL()),
			zap.String("env", cfg.Env),
		)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
