package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FencedJSON(t *testing.T) {
	fields, err := Decode("```json\n{\"ticker\":\"BTCUSD\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ticker": "BTCUSD"}, fields)
}

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "bare json",
			input: `{"ticker":"BTCUSD","pnl_amount":5}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"ticker\":\"BTCUSD\",\"pnl_amount\":5}\n```",
		},
		{
			name:  "fence with surrounding whitespace",
			input: "  ```json\n{\"ticker\":\"BTCUSD\",\"pnl_amount\":5}\n```  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "BTCUSD", fields["ticker"])
			assert.InDelta(t, 5.0, fields["pnl_amount"], 1e-9)
		})
	}
}

func TestDecode_NotJSONYieldsSentinel(t *testing.T) {
	fields, err := Decode("not json at all")

	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "not json at all", decodeErr.Raw)

	require.NotNil(t, fields, "sentinel mapping must always be usable")
	assert.Contains(t, fields, "error")
	assert.Equal(t, "UNKNOWN", fields["ticker"])
	assert.Equal(t, "unknown", fields["direction"])
	assert.Equal(t, 0.0, fields["pnl_amount"])
}

func TestDecode_EmptyInput(t *testing.T) {
	fields, err := Decode("")
	require.Error(t, err)
	assert.Contains(t, fields, "error")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no fence is only trimmed",
			input:    "  {\"a\":1}  ",
			expected: `{"a":1}`,
		},
		{
			name:     "json language tag",
			input:    "```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "plain fence",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "fence on a single line",
			input:    "```{\"a\":1}```",
			expected: `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}
