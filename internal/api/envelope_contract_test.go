package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureDir locates testdata/envelope at the repository root. API clients
// parse the same files, so any shape change here breaks them.
func fixtureDir(t *testing.T) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(root, "testdata", "envelope")
}

func loadFixture(t *testing.T, name string) map[string]any {
	raw, err := os.ReadFile(filepath.Join(fixtureDir(t), name))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func transform(t *testing.T, status string, v any) map[string]any {
	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract(t *testing.T) {
	tests := []struct {
		fixture string
		status  string
		value   any
	}{
		{"success.json", "200", map[string]string{"uid": "test-123", "title": "Test Book"}},
		{"success_null_data.json", "204", nil},
		{"error_simple.json", "404", &APIError{Message: "Resource not found"}},
		{"error_detailed.json", "400", &APIError{
			Code:    "validation",
			Message: "validation failed",
			Details: map[string]string{"email": "must be a valid email address"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			expected := loadFixture(t, tt.fixture)
			got := transform(t, tt.status, tt.value)

			// Same keys, same values. Data payloads are compared as decoded JSON.
			assert.Equal(t, expected, got)
		})
	}
}

func TestEnvelopeContract_VersionKey(t *testing.T) {
	got := transform(t, "200", nil)

	assert.Equal(t, float64(EnvelopeVersion), got["v"])
	assert.NotContains(t, got, "version")
}
