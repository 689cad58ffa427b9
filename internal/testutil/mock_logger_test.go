package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Empty(t, logger.Messages())

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_DerivedShareBuffer(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("bootstrap").With(logging.String("k", "v")).Named("prediction")
	child.Warn("hello", logging.Int("n", 1))

	messages := root.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "bootstrap.prediction", messages[0].Logger)
	assert.Len(t, messages[0].Fields, 2)
}
