package git

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	t.Run("parses well-formed metadata", func(t *testing.T) {
		meta, rewritten, err := ParseMetadata(`{"pr": 42, "slot": "03"}`)
		require.NoError(t, err)
		require.Empty(t, rewritten)
		require.NotNil(t, meta.PR)
		require.Equal(t, 42, *meta.PR)
		require.Equal(t, "03", meta.Slot)
	})

	t.Run("parses metadata without a PR", func(t *testing.T) {
		meta, rewritten, err := ParseMetadata(`{"slot": "my-feature"}`)
		require.NoError(t, err)
		require.Empty(t, rewritten)
		require.Nil(t, meta.PR)
		require.Equal(t, "my-feature", meta.Slot)
	})

	t.Run("recovers first object from concatenated notes", func(t *testing.T) {
		content := `{"pr": 7, "slot": "01"}` + "\n" + `{"pr": 8, "slot": "02"}`
		meta, rewritten, err := ParseMetadata(content)
		require.NoError(t, err)
		require.Equal(t, `{"pr": 7, "slot": "01"}`, rewritten)
		require.Equal(t, 7, *meta.PR)
		require.Equal(t, "01", meta.Slot)
	})

	t.Run("recovers object followed by trailing garbage", func(t *testing.T) {
		meta, rewritten, err := ParseMetadata(`{"slot": "04"} leftover text`)
		require.NoError(t, err)
		require.Equal(t, `{"slot": "04"}`, rewritten)
		require.Equal(t, "04", meta.Slot)
	})

	t.Run("braces inside string values do not confuse recovery", func(t *testing.T) {
		content := `{"slot": "a{b}c"}` + "garbage"
		meta, rewritten, err := ParseMetadata(content)
		require.NoError(t, err)
		require.Equal(t, `{"slot": "a{b}c"}`, rewritten)
		require.Equal(t, "a{b}c", meta.Slot)
	})

	t.Run("fails on empty content", func(t *testing.T) {
		_, _, err := ParseMetadata("   \n")
		require.Error(t, err)
	})

	t.Run("fails when no object can be recovered", func(t *testing.T) {
		_, _, err := ParseMetadata("not json at all")
		require.Error(t, err)
	})

	t.Run("fails on unbalanced braces", func(t *testing.T) {
		_, _, err := ParseMetadata(`{"slot": "01"`)
		require.Error(t, err)
	})
}

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"simple object", `{"a":1}`, `{"a":1}`, true},
		{"object with prefix", `note: {"a":1}`, `{"a":1}`, true},
		{"nested objects", `{"a":{"b":2}} tail`, `{"a":{"b":2}}`, true},
		{"escaped quote in string", `{"a":"x\"{"} tail`, `{"a":"x\"{"}`, true},
		{"no object", "plain text", "", false},
		{"unterminated", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFirstJSONObject(tt.input)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		subject string
		body    string
	}{
		{"subject only", "Add feature\n", "Add feature", ""},
		{"subject and body", "Add feature\n\nDetails here.\n", "Add feature", "Details here."},
		{"extra blank lines before body", "Fix bug\n\n\n\nRoot cause.\n", "Fix bug", "Root cause."},
		{"multi-line body", "Subject\n\nline one\nline two", "Subject", "line one\nline two"},
		{"empty message", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := SplitMessage(tt.message)
			require.Equal(t, tt.subject, subject)
			require.Equal(t, tt.body, body)
		})
	}
}
