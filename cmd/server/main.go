package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teamhub/internal/auth"
	"teamhub/internal/config"
	apphttp "teamhub/internal/http"
	"teamhub/internal/repository/sqlite"
	"teamhub/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	playerRepo := sqlite.NewPlayerRepository(db)
	eventRepo := sqlite.NewEventRepository(db)
	confirmationRepo := sqlite.NewConfirmationRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	newsRepo := sqlite.NewNewsRepository(db)

	for _, init := range []interface {
		Init(context.Context) error
	}{userRepo, playerRepo, eventRepo, confirmationRepo, messageRepo, newsRepo} {
		if err := init.Init(ctx); err != nil {
			logger.Fatalf("init repository: %v", err)
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authService := service.NewAuthService(userRepo, tokens)
	teamService := service.NewTeamService(eventRepo, confirmationRepo, playerRepo, messageRepo, newsRepo)

	gin.SetMode(gin.ReleaseMode)
	apphttp.InitValidator()
	router := gin.New()
	router.Use(gin.Recovery())

	handler := apphttp.NewHandler(authService, teamService, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
