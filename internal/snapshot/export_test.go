package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"close", "close"},
		{"Perf.1M", "Perf_1M"},
		{"ADX+DI", "ADX_plus_DI"},
		{"ADX-DI", "ADX_minus_DI"},
		{"Recommend.All", "Recommend_All"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeKey(tt.key))
		})
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	n, err := Export(&buf, sampleResponse(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "ASX:BHP", rows[0]["symbol"])
	assert.Equal(t, 45.1, rows[0]["close"])
	assert.Contains(t, rows[0], "Perf_1M")
	assert.Nil(t, rows[0]["Perf_1M"])
	assert.NotContains(t, rows[0], "Perf.1M")
}

func TestStore_Deploy(t *testing.T) {
	store := NewStore(t.TempDir())
	out := filepath.Join(t.TempDir(), "public", "data.json")

	_, err := store.Deploy(out)
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	_, err = store.SaveRaw(day("2026-02-18"), sampleResponse(t))
	require.NoError(t, err)

	result, err := store.Deploy(out)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, store.Path(day("2026-02-18")), result.Source)

	raw, err := os.ReadFile(result.RawCopy)
	require.NoError(t, err)
	original, err := os.ReadFile(result.Source)
	require.NoError(t, err)
	assert.Equal(t, original, raw)
}
