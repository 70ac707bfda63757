package util

import "testing"

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "simple path",
			input:    "tests/hello.p",
			expected: "tests/hello.p",
		},
		{
			name:     "string with double quotes",
			input:    `hello "world"`,
			expected: `hello \"world\"`,
		},
		{
			name:     "string with newline and tab",
			input:    "hello\n\tworld",
			expected: `hello\n\tworld`,
		},
		{
			name:     "string with backslash",
			input:    `C:\src\a.p`,
			expected: `C:\\src\\a.p`,
		},
		{
			name:     "string with control characters",
			input:    "hello\x00\x01world",
			expected: `hello\x00\x01world`,
		},
		{
			name:     "multi-byte characters",
			input:    "中.p",
			expected: `\xE4\xB8\xAD.p`,
		},
		{
			name:     "latin-1 range and delete",
			input:    "caf\u00e9\x7f",
			expected: `caf\xC3\xA9\x7F`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeString(tt.input)
			if got != tt.expected {
				t.Errorf("EscapeString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
