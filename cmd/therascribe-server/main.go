package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/therascribe/therascribe/internal/config"
	"github.com/therascribe/therascribe/internal/domain/patient"
	"github.com/therascribe/therascribe/internal/domain/session"
	"github.com/therascribe/therascribe/internal/domain/template"
	"github.com/therascribe/therascribe/internal/platform/ai"
	"github.com/therascribe/therascribe/internal/platform/middleware"
	"github.com/therascribe/therascribe/internal/platform/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "therascribe-server",
		Short: "Clinician note-taking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the starter note templates into an empty chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := template.NewService(context.Background(), st, logger, true); err != nil {
				return err
			}
			logger.Info().Msg("starter templates installed")
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	st, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open chart store")
	}
	defer st.Close()
	logger.Info().Str("data_dir", cfg.DataDir).Msg("chart store opened")

	// Services. The patient service needs the session service to flag
	// orphaned sessions, and the session service resolves patients and
	// templates for rendering, so the cross-links attach after construction.
	patientSvc, err := patient.NewService(ctx, st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load patients")
	}
	templateSvc, err := template.NewService(ctx, st, logger, cfg.SeedTemplates)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load templates")
	}
	sessionSvc, err := session.NewService(ctx, st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load sessions")
	}
	sessionSvc.SetPatientSource(patientSvc)
	sessionSvc.SetTemplateSource(templateSvc)
	patientSvc.SetSessionMarker(sessionSvc)

	generator := ai.NewGenerator(ai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: float32(cfg.AITemperature),
		MaxTokens:   cfg.AIMaxTokens,
	}, logger)
	if !generator.Configured() {
		logger.Warn().Msg("no OpenAI API key set, note generation disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	api := e.Group("/api")

	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.SetLastSessionResolver(sessionSvc.LastSessionLabel)
	patientHandler.RegisterRoutes(api)

	session.NewHandler(sessionSvc).RegisterRoutes(api)
	template.NewHandler(templateSvc).RegisterRoutes(api)
	ai.NewHandler(generator).RegisterRoutes(api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
