package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/testutil"
)

func TestNewServer(t *testing.T) {
	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 9123
	s := NewServer(cfg, http.NewServeMux(), nil)
	assert.Equal(t, "127.0.0.1:9123", s.Addr())
	assert.Equal(t, cfg.ReadTimeout, s.httpServer.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, s.httpServer.WriteTimeout)
	assert.NotNil(t, s.Handler())
}

func TestServer_ServeAndShutdown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	log := testutil.NewMockLogger()
	s := NewServer(config.Default().Server, mux, log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", ln.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	assert.True(t, log.HasMessage("info", "HTTP server stopped"))
}
