package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipebook/database"
	"recipebook/internal/config"
	"recipebook/internal/microservices/http-api/dto"
	"recipebook/internal/microservices/http-api/middleware"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GoEnv:          "test",
		RequestTimeout: 5 * time.Second,
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		DBMaxOpenConns: 4,
		RateLimitBurst: 20,
		MetricsEnabled: true,
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func openDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newServer(t *testing.T, cfg *config.Config, db *gorm.DB, rdb redis.UniversalClient) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := New(Deps{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return h
}

func call(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// RecipeAPISuite drives the assembled API over a real sqlite database.
type RecipeAPISuite struct {
	suite.Suite
	handler http.Handler
}

func (s *RecipeAPISuite) SetupTest() {
	cfg := testConfig(s.T())
	s.handler = newServer(s.T(), cfg, openDB(s.T(), cfg), nil)
}

func (s *RecipeAPISuite) create(body string) dto.RecipeDetailResponse {
	w := call(s.handler, http.MethodPost, "/recipes", body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.RecipeDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RecipeAPISuite) list(path string) []dto.RecipeListItem {
	w := call(s.handler, http.MethodGet, path, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp []dto.RecipeListItem
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RecipeAPISuite) TestCatalogFlow() {
	omelette := s.create(`{"title":"Omelette","cooking_time":10,"description":"Whisk and fry.","ingredient_names":["egg","salt"]}`)
	pancakes := s.create(`{"title":"Pancakes","cooking_time":20,"description":"Mix and fry.","ingredient_names":["flour","egg","milk"]}`)
	toast := s.create(`{"title":"Toast","cooking_time":3,"description":"Toast it.","ingredient_names":[]}`)

	s.Equal(int64(0), omelette.Views)
	s.Empty(toast.Ingredients)
	s.Equal(omelette.Ingredients[0].ID, pancakes.Ingredients[1].ID, "egg is shared")

	// no views yet, so quickest first
	rows := s.list("/recipes")
	s.Require().Len(rows, 3)
	s.Equal([]int64{toast.ID, omelette.ID, pancakes.ID}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})

	// two views on pancakes, one on omelette
	for _, id := range []int64{pancakes.ID, pancakes.ID, omelette.ID} {
		w := call(s.handler, http.MethodGet, fmt.Sprintf("/recipes/%d", id), "")
		s.Require().Equal(http.StatusOK, w.Code)
	}
	w := call(s.handler, http.MethodGet, fmt.Sprintf("/recipes/%d", pancakes.ID), "")
	var detail dto.RecipeDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal(int64(3), detail.Views)
	s.Equal([]string{"egg", "flour", "milk"}, []string{detail.Ingredients[0].Name, detail.Ingredients[1].Name, detail.Ingredients[2].Name})

	rows = s.list("/recipes")
	s.Equal([]int64{pancakes.ID, omelette.ID, toast.ID}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})

	rows = s.list("/recipes?skip=1&limit=1")
	s.Require().Len(rows, 1)
	s.Equal(omelette.ID, rows[0].ID)
	s.Empty(s.list("/recipes?limit=0"))

	w = call(s.handler, http.MethodGet, "/ingredients", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[{"id":1,"name":"egg"},{"id":2,"name":"salt"},{"id":3,"name":"flour"},{"id":4,"name":"milk"}]`, w.Body.String())

	rows = s.list(fmt.Sprintf("/ingredients/%d/recipes", omelette.Ingredients[0].ID))
	s.Require().Len(rows, 2)
	s.Equal(pancakes.ID, rows[0].ID)

	w = call(s.handler, http.MethodGet, fmt.Sprintf("/recipes/%d/ingredients", pancakes.ID), "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[{"id":1,"name":"egg"},{"id":3,"name":"flour"},{"id":4,"name":"milk"}]`, w.Body.String())
	w = call(s.handler, http.MethodGet, fmt.Sprintf("/recipes/%d/ingredients", toast.ID), "")
	s.JSONEq(`[]`, w.Body.String())
	w = call(s.handler, http.MethodGet, "/recipes/999/ingredients", "")
	s.Equal(http.StatusNotFound, w.Code)

	// the ingredient listing did not count as a view
	rows = s.list("/recipes?limit=1")
	s.Equal(int64(3), rows[0].Views)
}

func (s *RecipeAPISuite) TestErrors() {
	w := call(s.handler, http.MethodGet, "/recipes/404", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"detail":"recipe not found"}`, w.Body.String())

	w = call(s.handler, http.MethodGet, "/recipes/x", "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = call(s.handler, http.MethodGet, "/recipes?skip=-1", "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = call(s.handler, http.MethodPost, "/recipes", `{"title":"t","cooking_time":0,"description":"d","ingredient_names":[]}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	// rejected input leaves nothing behind
	s.Empty(s.list("/recipes"))
	w = call(s.handler, http.MethodGet, "/ingredients", "")
	s.JSONEq(`[]`, w.Body.String())
}

func (s *RecipeAPISuite) TestSystemRoutes() {
	w := call(s.handler, http.MethodGet, "/", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"version":"1.0.0"`)

	w = call(s.handler, http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, w.Code)

	w = call(s.handler, http.MethodGet, "/docs", "")
	s.Equal(http.StatusOK, w.Code)

	call(s.handler, http.MethodGet, "/recipes", "")
	w = call(s.handler, http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `recipebook_http_requests_total`)

	w = call(s.handler, http.MethodGet, "/recipes", "")
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))
}

func (s *RecipeAPISuite) TestCORS() {
	w := call(s.handler, http.MethodGet, "/recipes", "", "Origin", "http://localhost:3000")
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))

	w = call(s.handler, http.MethodOptions, "/recipes", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
	)
	s.Less(w.Code, 300)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecipeAPISuite(t *testing.T) {
	suite.Run(t, new(RecipeAPISuite))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestHealthReportsClosedDatabase(t *testing.T) {
	cfg := testConfig(t)
	db := openDB(t, cfg)
	h := newServer(t, cfg, db, nil)
	require.NoError(t, database.Close(db))

	w := call(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","detail":"database unreachable"}`, w.Body.String())
}

func TestWriteAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthEnabled = true
	cfg.JWTSecret = testSecret
	h := newServer(t, cfg, openDB(t, cfg), nil)
	body := `{"title":"Soup","cooking_time":30,"description":"Simmer.","ingredient_names":["water"]}`

	w := call(h, http.MethodPost, "/recipes", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.SignToken(testSecret, "editor", []string{middleware.ScopeWriteRecipe}, time.Minute)
	require.NoError(t, err)
	w = call(h, http.MethodPost, "/recipes", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// reads never need a token
	w = call(h, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocalRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.01
	cfg.RateLimitBurst = 2
	h := newServer(t, cfg, openDB(t, cfg), nil)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/recipes", "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/ingredients", "").Code)
	w := call(h, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// system routes sit outside the limiter
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/healthz", "").Code)
}

func TestRedisBackedRateLimitAndHealth(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.01
	cfg.RateLimitBurst = 1
	h := newServer(t, cfg, openDB(t, cfg), rdb)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/recipes", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/recipes", "").Code)
	assert.NotEmpty(t, m.Keys())

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/healthz", "").Code)
	m.Close()
	w := call(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")

	// limiter outage fails open
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/recipes", "").Code)
}
