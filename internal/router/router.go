package router

import (
	"repairtrack/internal/cache"
	"repairtrack/internal/config"
	"repairtrack/internal/handler"
	"repairtrack/internal/metrics"
	"repairtrack/internal/middleware"
	"repairtrack/internal/repository"
	"repairtrack/internal/service"
	"repairtrack/internal/web"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Cache
func New(cfg *config.Config, db *gorm.DB, store cache.Store) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.APIRatePerMinute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	machineRepo := repository.NewMachineRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	machineSvc := service.NewMachineService(machineRepo, store, cfg.Departments)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	machinesH := handler.NewMachinesHandler(machineSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, store))
	r.GET("/metrics", metrics.Handler())

	users := r.Group("/api/users")
	{
		authLimit := middleware.AuthRateLimiter(cfg.AuthRatePerMinute)
		users.POST("/register", authLimit, authH.Register)
		users.POST("/login", authLimit, authH.Login)
	}

	// Protected routes
	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret, authSvc))
	{
		api.GET("/users/me", authH.Me)
		api.GET("/departments", machinesH.Departments)

		machines := api.Group("/machines")
		{
			machines.POST("", machinesH.Create)
			machines.GET("", machinesH.List)
			machines.GET("/department/:department", machinesH.ListByDepartment)
			machines.GET("/:id", machinesH.Get)
			machines.POST("/:id/repair", machinesH.UpdateRepair)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	web.Register(r)

	return r
}
