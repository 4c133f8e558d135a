package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/tcon/auth-user-service/docs"
	"github.com/tcon/auth-user-service/internal/api/handler"
	"github.com/tcon/auth-user-service/internal/api/middleware"
	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
	"github.com/tcon/auth-user-service/internal/core/service"
	mongostore "github.com/tcon/auth-user-service/internal/infrastructure/db/mongo"
	redisstore "github.com/tcon/auth-user-service/internal/infrastructure/db/redis"
	"github.com/tcon/auth-user-service/internal/pkg/config"
	"github.com/tcon/auth-user-service/internal/token"
)

// NewRouter builds the Echo instance with all routes registered. The token
// codec and side-effect dispatcher are constructed by main and shared here.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	codec *token.Codec,
	dispatcher ports.SideEffectDispatcher,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	roleRepo := mongostore.NewAdminRoleRepository(db)
	codeCache := redisstore.NewCodeCache(rdb)

	twoFactorService := service.NewTwoFactorService(
		userRepo, codeCache, cfg.Security.TwoFactorIssuer, cfg.Security.TwoFactorCodeTTL, log)
	authService := service.NewAuthService(
		userRepo,
		service.NewAdminRoleAuthority(roleRepo),
		codec,
		twoFactorService,
		dispatcher,
		service.AuthConfig{
			AccessTTL:        cfg.JWT.AccessTTL,
			RefreshTTL:       cfg.JWT.RefreshTTL,
			LockoutThreshold: cfg.Security.LockoutThreshold,
			LockoutDuration:  cfg.Security.LockoutDuration,
			VerifyTokenTTL:   cfg.Security.VerifyTokenTTL,
		},
		log,
	)
	resetService := service.NewPasswordResetService(
		userRepo, dispatcher, cfg.Security.ResetTokenTTL, cfg.Notifier.FrontendURL, log)
	roleService := service.NewAdminRoleService(roleRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	passwordHandler := handler.NewPasswordHandler(resetService)
	twoFactorHandler := handler.NewTwoFactorHandler(twoFactorService)
	roleHandler := handler.NewAdminRoleHandler(roleService)

	authRequired := middleware.Auth(codec)
	adminOnly := middleware.RBAC(string(domain.RoleAdmin))

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify-2fa", authHandler.VerifyTwoFactor)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/password-reset/request", passwordHandler.ForgotPassword)
	auth.POST("/password-reset/confirm", passwordHandler.ResetPassword)
	auth.POST("/verify-email", passwordHandler.VerifyEmail)

	auth.POST("/admin/register", authHandler.RegisterAdmin, authRequired, adminOnly)
	auth.POST("/2fa/enroll", twoFactorHandler.Enroll, authRequired)
	auth.POST("/2fa/disable", twoFactorHandler.Disable, authRequired)

	// --- Admin role registry (ADMIN only) ---
	admin := e.Group("/api/admin/roles", authRequired, adminOnly)
	admin.POST("", roleHandler.Create)
	admin.GET("", roleHandler.List)
	admin.PUT("/:id", roleHandler.Update)
	admin.DELETE("/:id", roleHandler.Deactivate)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
