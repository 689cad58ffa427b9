package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/dti-affinity/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(t *testing.T, cfg config.CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, "/predict", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	if preflight {
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.Header.Set("Access-Control-Request-Headers", "Content-Type")
	}
	CORS(cfg)(okHandler()).ServeHTTP(w, r)
	return w
}

func TestCORS_Preflight(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 600}
	w := corsRequest(t, cfg, http.MethodOptions, "https://app.example.com", true)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_OriginMatching(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"exact", []string{"https://a.com", "https://b.com"}, "https://b.com", "https://b.com"},
		{"case insensitive", []string{"https://A.com"}, "https://a.com", "https://a.com"},
		{"wildcard", []string{"*"}, "https://any.org", "*"},
		{"subdomain", []string{"*.example.com"}, "https://lab.example.com", "https://lab.example.com"},
		{"subdomain mismatch", []string{"*.example.com"}, "https://example.org", ""},
		{"disallowed", []string{"https://allowed.com"}, "https://evil.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsRequest(t, config.CORSConfig{AllowedOrigins: tt.origins}, http.MethodPost, tt.origin, false)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	w := corsRequest(t, config.CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodGet, "", false)
	assert.Equal(t, "ok", w.Body.String())
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Values("Vary"))
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}
	w := corsRequest(t, cfg, http.MethodGet, "https://app.example.com", false)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ExposesRequestID(t *testing.T) {
	w := corsRequest(t, config.CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodPost, "https://x.com", false)
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_OptionsWithoutPreflightHeaderReachesHandler(t *testing.T) {
	w := corsRequest(t, config.CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodOptions, "https://x.com", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
