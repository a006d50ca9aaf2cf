package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zuiji/legacy-waitlist/internal/auth"
	"github.com/zuiji/legacy-waitlist/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth *AuthHandler
	Bans *BanHandler

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	authMw := deps.TokenService.Middleware()

	// SSO round trip — no auth middleware, stricter rate limit
	sso := e.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	sso.GET("/login", deps.Auth.Login)
	sso.GET("/callback", deps.Auth.Callback)
	sso.POST("/refresh", deps.Auth.Refresh)

	// Session endpoints — require JWT auth
	session := e.Group("/auth", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)
	session.POST("/logout", deps.Auth.Logout)
	session.GET("/whoami", deps.Auth.WhoAmI)

	// Ban endpoints — require JWT auth + general rate limit
	v1 := e.Group("/api/v1", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)
	v1.POST("/bans", deps.Bans.CreateBan)
	v1.GET("/bans", deps.Bans.ListBans)
	v1.GET("/bans/history", deps.Bans.BanHistory)
	v1.PATCH("/bans/:id", deps.Bans.AmendBan)
	v1.DELETE("/bans/:id", deps.Bans.RevokeBan)
}
