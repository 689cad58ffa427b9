package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/testutil"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Features.Radius = testutil.FixtureRadius
	cfg.Features.NBits = testutil.FixtureBits
	cfg.Estimator.ArtifactPath = testutil.WriteArtifact(t, testutil.ConstantForest(testutil.FixtureFeatures, 6))
	return cfg
}

func TestNewApp_MissingArtifactFailsFast(t *testing.T) {
	cfg := config.Default()
	cfg.Estimator.ArtifactPath = t.TempDir() + "/missing.json"

	app, err := NewApp(context.Background(), cfg, nil, "test")
	assert.Nil(t, app)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingEstimatorArtifact))
}

func TestApp_ServeUntilCancelled(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), testutil.NewMockLogger(), "test")
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	base := fmt.Sprintf("http://%s", ln.Addr())
	resp, err := http.Post(base+"/predict", "application/json", strings.NewReader(`{"drug":"CCO","protein":"MKT"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
