package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"recipebook/internal/microservices/http-api/docs"

	"github.com/gin-gonic/gin"
)

const APIVersion = "1.0.0"

// HealthCheck is a named dependency probe used by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type SystemHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

func NewSystemHandler(timeout time.Duration, checks ...HealthCheck) *SystemHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SystemHandler{checks: checks, timeout: timeout}
}

func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Root)
	rg.GET("/healthz", h.Health)
	rg.GET("/docs", h.OpenAPIJSON)
	rg.GET("/redoc", h.OpenAPIYAML)
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe Book API",
		"version": APIVersion,
		"docs":    "/docs",
		"redoc":   "/redoc",
	})
}

// Health handles GET /healthz; any failing check turns the answer into 503.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "check", check.Name, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"detail": check.Name + " unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// OpenAPIJSON handles GET /docs
func (h *SystemHandler) OpenAPIJSON(c *gin.Context) {
	doc, err := docs.Document()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "openapi document is broken", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// OpenAPIYAML handles GET /redoc
func (h *SystemHandler) OpenAPIYAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", docs.YAML())
}
