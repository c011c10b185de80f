// Package main is the entry point for the VueNetCrud API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/config"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/server"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/store"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/validation"
)

// Login accepted when no users are configured.
const (
	demoUsername = "admin"
	demoPassword = "123"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	// Initialize logger
	logger, err := initLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("probe_port", cfg.Server.ProbePort),
		zap.String("log_level", cfg.Log.Level),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Strings("allowed_origins", cfg.CORS.AllowedOrigins),
	)

	deps, err := buildDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return 1
	}

	srv, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// buildDependencies creates the stores, validators and auth services the
// server routes to.
func buildDependencies(cfg *config.Config, logger *zap.Logger) (server.Dependencies, error) {
	registry, err := validation.NewDefaultRegistry()
	if err != nil {
		return server.Dependencies{}, err
	}

	credentials, err := createCredentials(cfg, logger, bcrypt.DefaultCost)
	if err != nil {
		return server.Dependencies{}, err
	}

	tokens, err := createTokenService(cfg, logger)
	if err != nil {
		return server.Dependencies{}, err
	}

	return server.Dependencies{
		Items:       store.NewItemStore(),
		Products:    store.NewProductStore(store.DefaultProducts()...),
		Validator:   registry,
		Credentials: credentials,
		Tokens:      tokens,
	}, nil
}

// createCredentials builds the login user store from config, falling back
// to the demo account when no users are configured.
func createCredentials(cfg *config.Config, logger *zap.Logger, cost int) (*auth.CredentialStore, error) {
	if len(cfg.Auth.Users) > 0 {
		credentials, err := auth.NewCredentialStore(cfg.Auth.Users)
		if err != nil {
			return nil, err
		}
		logger.Info("login users loaded", zap.Int("count", credentials.Len()))
		return credentials, nil
	}

	logger.Warn("no login users configured, accepting the demo account",
		zap.String("username", demoUsername),
	)
	return auth.NewDemoCredentialStore(demoUsername, demoPassword, cost)
}

// createTokenService builds the JWT issuer and verifier.
func createTokenService(cfg *config.Config, logger *zap.Logger) (*auth.JWTService, error) {
	if cfg.JWT.Key == config.DefaultJWTKey && cfg.IsProduction() {
		logger.Warn("using the built-in JWT signing key in Production, set APP_JWT_KEY")
	}

	return auth.NewJWTService(auth.TokenConfig{
		Key:      []byte(cfg.JWT.Key),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
}

// initLogger initializes a zap logger with the specified level and
// encoding.
func initLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encodeLevel := zapcore.LowercaseLevelEncoder
	if format == "console" {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
