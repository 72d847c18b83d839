package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithAccountID(ctx, "acc-9")
	ctx = WithTraceID(ctx, "trace-3")
	logger.With("component", "test").InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "acc-9", record["account_id"])
	assert.Equal(t, "trace-3", record["trace_id"])
	assert.Equal(t, "test", record["component"])
}

func TestNewLogger_TextOutsideProduction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLogger("development", &buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
	assert.Equal(t, "", ExtractRequestID(context.Background()))
}
