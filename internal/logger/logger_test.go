package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(buf, "warn")
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("file", "extrato.ofx").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "file=extrato.ofx")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" ERROR ", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, "input: %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewJSON(buf, "info")
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Int("created", 2).Msg("import finished")

	out := buf.String()
	assert.Contains(t, out, `"created":2`)
	assert.Contains(t, out, `"message":"import finished"`)
	assert.NotContains(t, out, "hidden")

	_, err = NewJSON(buf, "loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewJSON(buf, "")
	require.NoError(t, err)
	ctx := WithContext(context.Background(), log)

	fromCtx := FromContext(ctx)
	fromCtx.Info().Msg("test")
	assert.NotZero(t, buf.Len())
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
