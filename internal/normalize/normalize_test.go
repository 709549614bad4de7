package normalize

import (
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  ICX 2025  ", "ICX 2025"},
		{"ICX  2025", "ICX 2025"},
		{"International\n   Conference\t X", "International Conference X"},
		{" \n\t ", ""},
	}

	for _, tt := range tests {
		if result := Title(tt.input); result != tt.expected {
			t.Errorf("Title(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Intro\nBody", "Intro"},
		{"\n\n  Intro  \nBody", "Intro"},
		{"Single", "Single"},
		{"", ""},
		{"\n \n", ""},
	}

	for _, tt := range tests {
		if result := FirstLine(tt.input); result != tt.expected {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page#anchor", "https://example.com/page"},
		{"  https://example.com  ", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if result := NormalizeURL(tt.input); result != tt.expected {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestTitleReplacesNBSP(t *testing.T) {
	if result := Title("ICX\u00A02025\u00A0"); result != "ICX 2025" {
		t.Errorf("Title with NBSP = %q, want %q", result, "ICX 2025")
	}
}
