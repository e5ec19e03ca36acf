package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/logger"
)

func newRouter(log *logger.Logger, cors CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.Use(CORS(cors))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})
	return r
}

func TestLoggerMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test"})
	r := newRouter(log, CORSConfig{})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "correlation id wins", headers: map[string]string{headerCorrelationID: "corr-1", headerRequestID: "req-1"}, want: "corr-1"},
		{name: "request id", headers: map[string]string{headerRequestID: "req-2"}, want: "req-2"},
		{name: "generated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(headerRequestID)
			if tt.want != "" && got != tt.want {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.want)
			}
			if got == "" {
				t.Fatal("missing X-Request-ID")
			}
			if w.Header().Get(headerCorrelationID) != got {
				t.Errorf("X-Correlation-ID = %q, want %q", w.Header().Get(headerCorrelationID), got)
			}
			if w.Body.String() != got {
				t.Errorf("handler saw request id %q, want %q", w.Body.String(), got)
			}
		})
	}
}

func TestLoggerMiddlewareNilLogger(t *testing.T) {
	r := newRouter(nil, CORSConfig{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CORSConfig
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{name: "allow all", cfg: CORSConfig{AllowAllOrigins: true}, origin: "https://a.example", method: http.MethodGet, wantOrigin: "*", wantStatus: http.StatusOK},
		{name: "listed origin", cfg: CORSConfig{AllowedOrigins: []string{"https://A.example"}}, origin: "https://a.example", method: http.MethodGet, wantOrigin: "https://a.example", wantStatus: http.StatusOK},
		{name: "unlisted origin", cfg: CORSConfig{AllowedOrigins: []string{"https://a.example"}}, origin: "https://b.example", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "preflight", cfg: CORSConfig{AllowAllOrigins: true}, origin: "https://a.example", method: http.MethodOptions, wantOrigin: "*", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(nil, tt.cfg)
			r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
			req := httptest.NewRequest(tt.method, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Correlation-ID") {
				t.Error("allow headers missing X-Correlation-ID")
			}
		})
	}
}
