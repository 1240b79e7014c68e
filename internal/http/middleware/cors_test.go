package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFixedCORS_OnEveryOutcome(t *testing.T) {
	r := gin.New()
	r.Use(FixedCORS())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.AbortWithStatus(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/fail"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		h := w.Header()
		if h.Get("Access-Control-Allow-Origin") != "*" ||
			h.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" ||
			h.Get("Access-Control-Allow-Headers") != "Content-Type" {
			t.Fatalf("%s: headers = %v", path, h)
		}
	}
}

func TestCORS_SkipsConfiguredPaths(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSOptions{AllowedOrigins: []string{"https://app.example"}, SkipPaths: []string{"/solutions"}}))
	r.GET("/solutions", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	// A disallowed origin is rejected by gin-contrib/cors on a covered path...
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("covered path status = %d, want 403", w.Code)
	}

	// ...but the skipped path is untouched.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/solutions", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("skipped path: status=%d headers=%v", w.Code, w.Header())
	}
}

func TestCORS_AllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSOptions{}))
	r.GET("/api/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Origin", "https://anything.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("ACAO = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
