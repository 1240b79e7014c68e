package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crud-backend/internal/domain"
	"github.com/tbourn/go-crud-backend/internal/http/middleware"
	"github.com/tbourn/go-crud-backend/internal/services"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	now = func() time.Time { return fixedNow }
}

// ---------- fakes ----------

type fakeSolutions struct {
	submitted []services.SolutionInput
	sol       *domain.Solution
	list      []domain.SolutionSummary
	err       error
}

func (f *fakeSolutions) Submit(_ context.Context, in services.SolutionInput) (*domain.Solution, error) {
	f.submitted = append(f.submitted, in)
	return f.sol, f.err
}

func (f *fakeSolutions) ListByProblem(context.Context, string) ([]domain.SolutionSummary, error) {
	return f.list, f.err
}

type fakeItems struct {
	item     *domain.Item
	items    []domain.Item
	replayed bool
	err      error

	gotKey string
	gotID  uint
	gotIn  services.ItemInput
}

func (f *fakeItems) Create(_ context.Context, in services.ItemInput, key string) (*domain.Item, bool, error) {
	f.gotIn, f.gotKey = in, key
	return f.item, f.replayed, f.err
}

func (f *fakeItems) List(context.Context) ([]domain.Item, error) { return f.items, f.err }

func (f *fakeItems) Get(_ context.Context, id uint) (*domain.Item, error) {
	f.gotID = id
	return f.item, f.err
}

// ---------- routers ----------

// newTestRouter mounts both groups the way the production router does,
// minus the global observability middleware.
func newTestRouter(sol SolutionService, items ItemService) *gin.Engine {
	h := New(sol, items, "test")
	r := gin.New()
	r.Use(middleware.CaptureBody(1 << 20))
	r.NoRoute(RouteNotFound)

	s := r.Group("/solutions", UsePolicy(PolicyBare), middleware.FixedCORS(), middleware.JSONBody(Abort))
	s.POST("", h.SubmitSolution)
	s.GET("", h.ListSolutions)
	s.OPTIONS("", h.SolutionsPreflight)

	api := r.Group("/api", UsePolicy(PolicyEnvelope),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil, Abort),
		middleware.JSONBody(Abort))
	api.GET("/items", h.ListItems)
	api.GET("/items/:id", h.GetItem)
	api.POST("/items", h.CreateItem)

	r.GET("/health", h.Health)
	return r
}

func do(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func assertFixedCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") != "*" ||
		h.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" ||
		h.Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Fatalf("missing fixed CORS headers: %v", h)
	}
}
