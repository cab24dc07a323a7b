// Package server implements the serve command of the login broker.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"kurologin/internal/application/login/usecases"
	"kurologin/internal/infrastructure/cache"
	"kurologin/internal/infrastructure/config"
	"kurologin/internal/infrastructure/geetest"
	"kurologin/internal/infrastructure/kuro"
	"kurologin/internal/infrastructure/scheduler"
	httpRouter "kurologin/internal/interfaces/http"
	"kurologin/internal/shared/biztime"
	"kurologin/internal/shared/goroutine"
	"kurologin/internal/shared/logger"
	"kurologin/internal/shared/validation"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the login broker HTTP server with specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	ginMode := mapEnvToGinMode(env)

	cfg, err := config.Load(ginMode)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	biztime.MustInit("")

	logger.Info("starting login broker",
		"environment", env,
		"address", cfg.Server.GetAddr())

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := validation.RegisterCustomValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	log := logger.NewLogger()

	challengeProvider := geetest.NewClient(geetest.Config{
		CaptchaID: cfg.Captcha.CaptchaID,
		BaseURL:   cfg.Captcha.BaseURL,
		Timeout:   cfg.Captcha.Timeout(),
	}, log)

	gatewayCfg := kuro.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout(),
	}
	smsGateway := kuro.NewSMSClient(gatewayCfg, log)
	accountService := kuro.NewAccountClient(gatewayCfg, log)

	sessionStore := cache.NewMemorySessionStore(cfg.Session.TTL())

	sendSMSCodeUC := usecases.NewSendSMSCodeUseCase(challengeProvider, smsGateway, sessionStore, log)
	completeLoginUC := usecases.NewCompleteLoginUseCase(smsGateway, accountService, sessionStore, log)
	sweepSessionsUC := usecases.NewSweepSessionsUseCase(sessionStore, log)

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterSessionSweepJob(sweepSessionsUC, cfg.Session.SweepInterval()); err != nil {
		return fmt.Errorf("failed to register session sweep job: %w", err)
	}
	schedulerManager.Start()
	defer func() {
		if err := schedulerManager.Stop(); err != nil {
			logger.Error("failed to stop scheduler", "error", err)
		}
	}()

	router := httpRouter.NewRouter(sendSMSCodeUC, completeLoginUC, cfg, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo(log, "http-server", func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
