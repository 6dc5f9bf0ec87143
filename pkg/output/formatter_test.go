package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewFormatterSelection(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter("json"))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("JSON"))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter("yaml"))
	assert.IsType(t, &TableFormatter{}, NewFormatter("table"))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("unknown"))
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	data := map[string]any{"rate_bpm": 17.5, "windows": 5}

	encoded, err := (&JSONFormatter{}).Format(data, true)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, 17.5, decoded["rate_bpm"])
}

func TestYAMLFormatterRoundTrip(t *testing.T) {
	data := map[string]any{"rate_bpm": 17.5}

	encoded, err := (&YAMLFormatter{}).Format(data, false)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, yaml.Unmarshal(encoded, &decoded))
	assert.Equal(t, 17.5, decoded["rate_bpm"])
}

func TestTableFormatterSections(t *testing.T) {
	data := map[string]map[string]any{
		"rate_bpm": {
			"mean":  17.58,
			"count": 5,
		},
	}

	encoded, err := (&TableFormatter{}).Format(data, false)
	require.NoError(t, err)

	text := string(encoded)
	assert.Contains(t, text, "Rate Bpm")
	assert.Contains(t, text, "Mean")
	assert.Contains(t, text, "17.58")
	assert.Contains(t, text, "Count")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	encoded, err := (&TableFormatter{}).Format([]int{1, 2, 3}, false)
	require.NoError(t, err)
	assert.JSONEq(t, "[1,2,3]", string(encoded))
}
