package http

import (
	"github.com/gin-gonic/gin"

	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/application/services"
	"github.com/multidom/domainsync/internal/domain/directory"
	"github.com/multidom/domainsync/internal/interfaces/http/handlers"
	"github.com/multidom/domainsync/internal/interfaces/http/middleware"
	"github.com/multidom/domainsync/internal/interfaces/http/session"
	"github.com/multidom/domainsync/pkg/logger"
)

// Router wraps the Gin engine with application dependencies.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// RouterDeps contains dependencies needed by the router.
type RouterDeps struct {
	SyncService   *services.SyncService
	Directory     directory.Repository
	DBHealther    handlers.HealthChecker
	RedisHealther handlers.HealthChecker
	Logger        logger.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, deps *RouterDeps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLoggerMiddleware(deps.Logger).Handler())

	// Create handlers
	sink := session.NewCookieSink(cfg.SSO.SessionCookie, cfg.SSO.RootDomain, cfg.SSO.SecureCookies)
	syncHandler := handlers.NewSyncHandler(deps.SyncService, sink)
	triggerHandler := handlers.NewTriggerHandler(deps.SyncService, cfg)
	domainsHandler := handlers.NewDomainsHandler(deps.Directory)
	healthHandler := handlers.NewHealthHandler(deps.DBHealther, deps.RedisHealther)

	// Health endpoints (no rate limiting)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/live", healthHandler.Live)

	// Apply global rate limiting if enabled
	if cfg.Security.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
		engine.Use(rateLimiter.Middleware())
	}

	// Sync protocol endpoints, behind the navigation gate. Each path is
	// also registered with the friendly-URL suffix when one is set.
	gate := middleware.NewNavigationGate()
	sync := engine.Group("")
	sync.Use(gate.Handler())
	registerSync := func(path string, handler gin.HandlerFunc) {
		sync.Any(path, handler)
		if cfg.SSO.URLSuffix != "" {
			sync.Any(path+cfg.SSO.URLSuffix, handler)
		}
	}
	registerSync(services.PathRunLogin, syncHandler.RunLogin)
	registerSync(services.PathRunLogout, syncHandler.RunLogout)
	registerSync(services.PathReceiveLogin, syncHandler.ReceiveLogin)
	registerSync(services.PathReceiveLogout, syncHandler.ReceiveLogout)

	// Trigger endpoints with stricter rate limiting
	trigger := engine.Group("/sync")
	if cfg.Security.RateLimitEnabled {
		triggerRateLimiter := middleware.NewTriggerRateLimiter()
		trigger.Use(triggerRateLimiter.Middleware())
	}
	{
		trigger.POST("/login", triggerHandler.TriggerLogin)
		trigger.POST("/logout", triggerHandler.TriggerLogout)
		trigger.GET("/kickoff", triggerHandler.Kickoff)
	}

	// Domain registry (read-only)
	engine.GET("/domains", domainsHandler.List)

	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
