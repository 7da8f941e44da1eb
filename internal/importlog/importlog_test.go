package importlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 11, 3, 14, 25, 6, 0, time.UTC)

	first := []Entry{{Timestamp: ts, UserID: 1, File: "extrato.ofx", Account: "000111", Created: 2, Total: 2}}
	second := []Entry{{Timestamp: ts.Add(time.Minute), UserID: 1, File: "broken.ofx", Error: "malformed OFX document"}}

	require.NoError(t, Append(dir, first))
	require.NoError(t, Append(dir, second))

	got, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, ts.Equal(got[0].Timestamp))
	assert.Equal(t, "000111", got[0].Account)
	assert.Equal(t, 2, got[0].Created)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, "malformed OFX document", got[1].Error)

	data, err := os.ReadFile(filepath.Join(dir, "logs", "import-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header written once")
}

func TestRead_Missing(t *testing.T) {
	got, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"short", []string{"a"}, "expected 8 fields"},
		{"bad time", []string{"yesterday", "1", "f", "a", "0", "0", "0", ""}, "parsing timestamp"},
		{"bad user", []string{"2025-01-01T00:00:00Z", "me", "f", "a", "0", "0", "0", ""}, "parsing user_id"},
		{"bad count", []string{"2025-01-01T00:00:00Z", "1", "f", "a", "two", "0", "0", ""}, "parsing count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.record)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
