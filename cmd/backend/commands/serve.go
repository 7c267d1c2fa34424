package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/smartbuspass/backend/handler"
	"github.com/smartbuspass/backend/middleware"
	"github.com/smartbuspass/backend/service"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()
			return serve(app)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

func serve(app *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.conf.RunMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Trace(app.logger))

	h := handler.New(app.sessions, app.verify, app.logger)
	h.Register(engine)

	jobs := service.NewJobs(app.sessions, app.verify, app.conf.Session.SweepInterval, app.conf.Verify.PassExpiryInterval, app.logger)
	jobs.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", app.conf.Host, app.conf.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		jobs.Wait()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "forced shutdown", "error", err)
	}
	jobs.Wait()
	return nil
}
