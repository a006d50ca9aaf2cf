package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/zuiji/legacy-waitlist/internal/api"
	"github.com/zuiji/legacy-waitlist/internal/auth"
	"github.com/zuiji/legacy-waitlist/internal/config"
	"github.com/zuiji/legacy-waitlist/internal/database"
	"github.com/zuiji/legacy-waitlist/internal/esi"
	redisclient "github.com/zuiji/legacy-waitlist/internal/redis"
	"github.com/zuiji/legacy-waitlist/internal/service"
	"github.com/zuiji/legacy-waitlist/internal/snowflake"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sf, err := snowflake.NewGenerator(1)
	if err != nil {
		slog.Error("snowflake", "error", err)
		os.Exit(1)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)
	esiClient := esi.NewClient(cfg.ESIURL, cfg.SSOURL, cfg.ESIClientID, cfg.ESISecretKey, rdb)

	// --- Repositories ---

	characters := database.NewCharacterRepository(pool)
	admins := database.NewAdminRepository(pool)
	bans := database.NewBanRepository(pool)

	// --- Services ---

	access := service.NewAccessChecker(admins)
	banSvc := service.NewBanService(bans, characters, admins, esiClient, sf, access)
	authSvc := service.NewAuthService(characters, esiClient, tokenSvc, rdb, access, cfg.SSORedirectURI)

	// --- Handlers ---

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc),
		Bans:         api.NewBanHandler(banSvc),
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("waitlist starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
