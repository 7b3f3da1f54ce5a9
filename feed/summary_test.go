package feed

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		expected string
	}{
		{
			name:     "plain text unchanged",
			contents: "Just some words",
			expected: "Just some words",
		},
		{
			name:     "markdown heading and newline",
			contents: "# Some Interesting Post\nThis contains a load of contents",
			expected: "Some Interesting Post This contains a load of contents",
		},
		{
			name:     "emphasis and links keep their text",
			contents: "Read **this** [guide](https://example.com) now",
			expected: "Read this guide now",
		},
		{
			name:     "html tags removed",
			contents: "<p>Hello <strong>world</strong></p>",
			expected: "Hello world",
		},
		{
			name:     "inline html emphasis",
			contents: "Hello <strong>world</strong>",
			expected: "Hello world",
		},
		{
			name:     "bold before punctuation",
			contents: "Read **this**, then stop.",
			expected: "Read this, then stop.",
		},
		{
			name:     "second level heading",
			contents: "## Setup\n\nInstall the *tools* first",
			expected: "Setup Install the tools first",
		},
		{
			name:     "underscores and asterisks in words",
			contents: "Use snake_case_names and 2 * 3 = 6",
			expected: "Use snake_case_names and 2 * 3 = 6",
		},
		{
			name:     "url with underscores",
			contents: "See http://example.com/some_path_here",
			expected: "See http://example.com/some_path_here",
		},
		{
			name:     "literal less than",
			contents: "if a<b then c",
			expected: "if a<b then c",
		},
		{
			name:     "image keeps alt text",
			contents: "![A diagram](/img/d.png) of the flow",
			expected: "A diagram of the flow",
		},
		{
			name:     "list and code block",
			contents: "- first\n- second\n\n```go\nfmt.Println(x)\n```",
			expected: "first second fmt.Println(x)",
		},
		{
			name:     "whitespace collapsed",
			contents: "  spaced   \n\n  out  ",
			expected: "spaced out",
		},
		{
			name:     "empty",
			contents: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summarize(tt.contents))
		})
	}
}

func TestSummarize_TruncatesAtWordBoundary(t *testing.T) {
	contents := strings.Repeat("word ", 100)

	got := Summarize(contents)

	assert.True(t, strings.HasSuffix(got, "word..."), got)
	assert.LessOrEqual(t, utf8.RuneCountInString(strings.TrimSuffix(got, "...")), SummaryLength)
	assert.Equal(t, got, Summarize(contents))
}
