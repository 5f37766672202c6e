package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/gin-gonic/gin"
)

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := s.do(req, true)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id: got=%q", got)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/health", nil), true)
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("generated request id: %q", got)
	}
}

func TestCORSPreflightSkipsAuth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/stt/en", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := s.do(req, false)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin: %q", got)
	}
}

func TestRecoveryRendersJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if msg := errorBody(t, w); msg != "Internal server error" {
		t.Fatalf("message: %q", msg)
	}
}

func TestBearerAuthEmptyTokenRejectsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth("", false))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
}
