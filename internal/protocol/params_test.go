package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeParams(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "json object",
			input: `<p>{"x":1}</p>`,
			want:  map[string]any{"p": map[string]any{"x": float64(1)}},
		},
		{
			name:  "boolean literal",
			input: "<p>true</p>",
			want:  map[string]any{"p": true},
		},
		{
			name:  "null literal",
			input: "<p>null</p>",
			want:  map[string]any{"p": nil},
		},
		{
			name:  "empty stays empty string",
			input: "<p></p>",
			want:  map[string]any{"p": ""},
		},
		{
			name:  "plain string",
			input: "<p>hello</p>",
			want:  map[string]any{"p": "hello"},
		},
		{
			name:  "integer",
			input: "<n>42</n>",
			want:  map[string]any{"n": float64(42)},
		},
		{
			name:  "negative decimal",
			input: "<n>-3.5</n>",
			want:  map[string]any{"n": float64(-3.5)},
		},
		{
			name:  "json array",
			input: `<list>["a","b"]</list>`,
			want:  map[string]any{"list": []any{"a", "b"}},
		},
		{
			name:  "malformed json keeps raw string",
			input: "<p>{not json}</p>",
			want:  map[string]any{"p": "{not json}"},
		},
		{
			name:  "value trimmed",
			input: "<path>  ./a.json  </path>",
			want:  map[string]any{"path": "./a.json"},
		},
		{
			name:  "multiple params",
			input: "<path>a.go</path><recursive>true</recursive>",
			want:  map[string]any{"path": "a.go", "recursive": true},
		},
		{
			name:  "duplicate name last wins",
			input: "<p>first</p><p>second</p>",
			want:  map[string]any{"p": "second"},
		},
		{
			name:  "no child tags",
			input: "plain content",
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeParams(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeParams(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestDecodeValue_LeadingPlusIsNotJSON(t *testing.T) {
	// "+5" matches the sign pattern but is not valid JSON; the raw trimmed
	// string is kept on parse failure.
	got := DecodeParams("<n>+5</n>")
	if got["n"] != "+5" {
		t.Errorf(`got %v, want "+5"`, got["n"])
	}
}
