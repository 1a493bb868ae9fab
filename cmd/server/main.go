// Package main initializes and starts the account HTTP server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/ykarataev/accountd/internal/config"
	"github.com/ykarataev/accountd/internal/db"
	"github.com/ykarataev/accountd/internal/logger"
	"github.com/ykarataev/accountd/internal/mailer"
	"github.com/ykarataev/accountd/internal/repository"
	"github.com/ykarataev/accountd/internal/server/handler/http"
	"github.com/ykarataev/accountd/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	versionStr, buildDateStr := version, buildDate
	if versionStr == "" {
		versionStr = "N/A"
	}
	if buildDateStr == "" {
		buildDateStr = "N/A"
	}
	fmt.Printf("Build version: %s\n", versionStr)
	fmt.Printf("Build date: %s\n", buildDateStr)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.SecretKey == "" {
		zapLogger.Fatal("secret key is required (flag -s or SECRET_KEY)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge expired sessions and stale reset-token entries periodically.
	db.StartExpiryCleaner(context.Background(), postgresDB, time.Hour, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	resetRepo := repository.NewPostgresResetTokenRepository(postgresDB)

	// Initialize business-logic services.
	hasher := service.NewPasswordHasher()
	accountService := service.NewAccountService(userRepo, hasher)
	sessionService := service.NewSessionService(sessionRepo, userRepo, zapLogger)
	resetService := service.NewResetService(
		userRepo,
		resetRepo,
		hasher,
		mailer.New(zapLogger),
		[]byte(options.SecretKey),
		options.BaseURL,
		zapLogger,
	)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{Accounts: accountService, Sessions: sessionService}
	resetHandler := &http.ResetHandler{Resets: resetService}
	profileHandler := &http.ProfileHandler{Accounts: accountService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, resetHandler, profileHandler, sessionService, postgresDB, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
