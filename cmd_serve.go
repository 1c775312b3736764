package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"food-rescue-api/config"
	"food-rescue-api/handlers"
	"food-rescue-api/logger"
	"food-rescue-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const defaultJWTSecret = "food_rescue_dev_secret"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		if cfg.IsProduction() && cfg.JWT.Secret == defaultJWTSecret {
			return errors.New("jwt.secret must be set in production")
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		gin.SetMode(cfg.Server.GinMode)
		secret := []byte(cfg.JWT.Secret)
		h := handlers.New(newServices(cfg, db), secret, cfg.JWT.TTL)
		router := routes.NewRouter(h, secret)

		server := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.L.Info("server running", "addr", "http://localhost"+server.Addr, "env", cfg.Env)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.L.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}
