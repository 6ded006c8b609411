package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"recipebook/internal/config"
	"recipebook/internal/microservices/http-api/handler"
	"recipebook/internal/microservices/http-api/middleware"
	"recipebook/internal/microservices/http-api/repository"
	"recipebook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs. Redis and Logger are optional.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// New wires repositories, services and handlers into a gin engine wrapped in CORS.
func New(d Deps) (http.Handler, error) {
	if d.Config == nil || d.DB == nil {
		return nil, fmt.Errorf("router: config and database are required")
	}
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))
	if cfg.MetricsEnabled {
		engine.Use(middleware.Metrics())
		engine.GET("/metrics", middleware.MetricsHandler())
	}

	handler.NewSystemHandler(cfg.RequestTimeout, healthChecks(d)...).RegisterRoutes(&engine.RouterGroup)

	api := engine.Group("/")
	if cfg.RateLimitEnabled() {
		api.Use(middleware.RateLimit(newLimiter(d)))
	}

	var writeGuards []gin.HandlerFunc
	if cfg.AuthEnabled {
		writeGuards = middleware.WriteGuards(cfg.JWTSecret)
	}

	recipeSvc := service.NewRecipeService(repository.NewRecipeRepo(d.DB))
	ingredientSvc := service.NewIngredientService(repository.NewIngredientRepo(d.DB))
	handler.NewRecipeHandler(recipeSvc, cfg.RequestTimeout).RegisterRoutes(api, writeGuards...)
	handler.NewIngredientHandler(ingredientSvc, cfg.RequestTimeout).RegisterRoutes(api)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
	})
	return c.Handler(engine), nil
}

func newLimiter(d Deps) middleware.Limiter {
	if d.Redis != nil {
		return middleware.NewRedisLimiter(d.Redis, "recipebook:rl", d.Config.RateLimitRPS, d.Config.RateLimitBurst)
	}
	return middleware.NewLocalLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst)
}

func healthChecks(d Deps) []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if d.Redis != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}
