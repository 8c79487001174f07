package types

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"", 5, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc..."},
		{"héllo", 2, "hé..."},
		{"日本語テキスト", 3, "日本語..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen), "Truncate(%q, %d)", tt.input, tt.maxLen)
	}
}

func TestTruncate_KeepsUTF8Valid(t *testing.T) {
	out := Truncate(strings.Repeat("é", 200), 150)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("é", 150)+"...", out)
}

func TestExecutionResult_String(t *testing.T) {
	assert.Equal(t, "Success: done", Success("done").String())
	assert.Equal(t, "Error: boom", Failure("boom").String())
}
