package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "My Cool Analysis", "my-cool-analysis"},
		{"already a slug", "my-cool-analysis", "my-cool-analysis"},
		{"punctuation collapses", "Hello, World! (v2)", "hello-world-v2"},
		{"leading and trailing junk", "  --Neat Project--  ", "neat-project"},
		{"mixed case and digits", "GPT-4 Benchmarks 2024", "gpt-4-benchmarks-2024"},
		{"consecutive separators", "a___b...c", "a-b-c"},
		{"nothing usable", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_OutputShape(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

	titles := []string{
		"My Cool Analysis",
		"a",
		"Trailing!",
		"?Leading",
		"Ünïcode Tïtle",
		"lots   of   spaces",
	}
	for _, title := range titles {
		slug := Slugify(title)
		if slug == "" {
			continue
		}
		assert.Regexp(t, valid, slug, "title %q", title)
		// A valid slug is a fixed point.
		assert.Equal(t, slug, Slugify(slug))
	}
}
