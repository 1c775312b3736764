package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := SetupWriter("production", &buf)
	log.Debug("hidden")
	log.Info("donation created", "donation_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "donation created", line["msg"])
	assert.EqualValues(t, 7, line["donation_id"])
}

func TestWithCtx(t *testing.T) {
	var buf bytes.Buffer
	base := SetupWriter("local", &buf)
	assert.Same(t, base, WithCtx(context.Background()))

	tagged := base.With("request_id", "abc")
	ctx := InjectLogger(context.Background(), tagged)
	WithCtx(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=abc")
}
