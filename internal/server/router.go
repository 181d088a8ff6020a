// Package server assembles the HTTP application from configuration, a
// database handle and a logger.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/config"
	"github.com/yukikurage/taskz/internal/handlers"
	"github.com/yukikurage/taskz/internal/metrics"
	"github.com/yukikurage/taskz/internal/middleware"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"github.com/yukikurage/taskz/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators the router is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	// Registry receives the HTTP collectors and backs /metrics.
	Registry *prometheus.Registry
}

// NewRouter wires policy, services and handlers and registers every route.
// Tenant routes exist only under the tenant strategy.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	log := d.Logger

	pol, err := policy.New(policy.Strategy(cfg.Auth.Strategy))
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(d.DB)
	repos := store.Repositories()
	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	resolver := auth.NewResolver(codec, repos.Users, log)
	httpMetrics := metrics.New(cfg.ServiceName, d.Registry)

	loginLimiter, err := middleware.NewIPRateLimiter(cfg.LoginRateLimit, log)
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	authHandler := handlers.NewAuthHandler(services.NewAuthService(repos.Users, hasher, codec, log), httpMetrics, log)
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(store, pol, log), log)
	userHandler := handlers.NewUserHandler(services.NewUserService(store, pol, hasher, log), resolver, log)
	tenantHandler := handlers.NewTenantHandler(services.NewTenantService(store, pol, log), log)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(log),
		middleware.AccessLog(log),
		httpMetrics.Middleware(),
		middleware.Secure(middleware.SecureOptions(!cfg.IsProduction())),
	)

	requireAuth := middleware.RequireAuth(resolver, log)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"strategy": pol.Strategy(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(d.Registry)))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", loginLimiter, authHandler.Login)
		authGroup.GET("/me", requireAuth, authHandler.GetCurrentUser)
	}

	tasks := r.Group("/tasks")
	{
		root(tasks, http.MethodGet, requireAuth, taskHandler.ListTasks)
		root(tasks, http.MethodPost, requireAuth, taskHandler.CreateTask)
		tasks.GET("/:id", requireAuth, taskHandler.GetTask)
		tasks.PUT("/:id", requireAuth, taskHandler.UpdateTask)
		tasks.DELETE("/:id", requireAuth, taskHandler.DeleteTask)
	}

	users := r.Group("/users")
	{
		root(users, http.MethodGet, requireAuth, userHandler.ListUsers)
		root(users, http.MethodPost, userHandler.CreateUser)
		users.GET("/:id", requireAuth, userHandler.GetUser)
		users.PUT("/:id", requireAuth, userHandler.UpdateUser)
		users.DELETE("/:id", requireAuth, userHandler.DeleteUser)
	}

	if pol.Strategy() == policy.StrategyTenant {
		tenants := r.Group("/tenants")
		{
			root(tenants, http.MethodGet, tenantHandler.ListTenants)
			root(tenants, http.MethodPost, tenantHandler.CreateTenant)
			tenants.GET("/:id", requireAuth, tenantHandler.GetTenant)
			tenants.PUT("/:id", requireAuth, tenantHandler.UpdateTenant)
			tenants.DELETE("/:id", requireAuth, tenantHandler.DeleteTenant)
		}
	}

	log.Info("Router ready", zap.String("strategy", string(pol.Strategy())))
	return r, nil
}

// root registers a collection endpoint with and without the trailing slash.
func root(g *gin.RouterGroup, method string, handlers ...gin.HandlerFunc) {
	g.Handle(method, "", handlers...)
	g.Handle(method, "/", handlers...)
}
