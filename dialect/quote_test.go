package dialect

import "testing"

func TestQuoteDoubleQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple table name", input: "sessions", expected: `"sessions"`},
		{name: "name with double quote", input: `my"table`, expected: `"my""table"`},
		{name: "empty string", input: "", expected: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteDoubleQuotes(tt.input); got != tt.expected {
				t.Errorf("QuoteDoubleQuotes(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestQuoteBackticks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple table name", input: "sessions", expected: "`sessions`"},
		{name: "name with backtick", input: "my`table", expected: "`my``table`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteBackticks(tt.input); got != tt.expected {
				t.Errorf("QuoteBackticks(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestQuoteBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple table name", input: "sessions", expected: "[sessions]"},
		{name: "name with bracket", input: "my]table", expected: "[my]]table]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteBrackets(tt.input); got != tt.expected {
				t.Errorf("QuoteBrackets(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	if got := PlaceholderDollar(1); got != "$1" {
		t.Errorf("PlaceholderDollar(1) = %q; want \"$1\"", got)
	}
	if got := PlaceholderDollar(12); got != "$12" {
		t.Errorf("PlaceholderDollar(12) = %q; want \"$12\"", got)
	}
	if got := PlaceholderQuestion(5); got != "?" {
		t.Errorf("PlaceholderQuestion(5) = %q; want \"?\"", got)
	}
	if got := PlaceholderColon(3); got != ":3" {
		t.Errorf("PlaceholderColon(3) = %q; want \":3\"", got)
	}
}
