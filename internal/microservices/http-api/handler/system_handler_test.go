package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"recipebook/internal/microservices/http-api/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSystemRouter(checks ...handler.HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewSystemHandler(time.Second, checks...).RegisterRoutes(&r.RouterGroup)
	return r
}

func pingOK(context.Context) error { return nil }

func TestSystemHandler_Root(t *testing.T) {
	w := doJSON(setupSystemRouter(), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Recipe Book API","version":"1.0.0","docs":"/docs","redoc":"/redoc"}`, w.Body.String())
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("All checks pass", func(t *testing.T) {
		r := setupSystemRouter(handler.HealthCheck{Name: "database", Ping: pingOK})

		w := doJSON(r, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("A failing check", func(t *testing.T) {
		r := setupSystemRouter(
			handler.HealthCheck{Name: "database", Ping: pingOK},
			handler.HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }},
		)

		w := doJSON(r, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unavailable","detail":"redis unreachable"}`, w.Body.String())
	})

	t.Run("No checks", func(t *testing.T) {
		w := doJSON(setupSystemRouter(), http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemHandler_Docs(t *testing.T) {
	r := setupSystemRouter()

	w := doJSON(r, http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc, "paths")

	w = doJSON(r, http.MethodGet, "/redoc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}
