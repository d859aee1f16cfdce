package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImageReferences(t *testing.T) {
	refs := ExtractImageReferences("![a](x.png) text ![b](y/z.png)")
	assert.Equal(t, []string{"x.png", "y/z.png"}, refs)
}

func TestExtractImageReferences_DuplicatesKept(t *testing.T) {
	refs := ExtractImageReferences("![one](pic.png)\n\nmore text\n\n![two](pic.png)")
	assert.Equal(t, []string{"pic.png", "pic.png"}, refs)
}

func TestExtractImageReferences_NoImages(t *testing.T) {
	assert.Empty(t, ExtractImageReferences("just [a link](somewhere) and text"))
}

func TestRewritePaths(t *testing.T) {
	got := RewritePaths("![a](x.png)", map[string]string{"x.png": "https://cdn/x.png"})
	assert.Equal(t, "![a](https://cdn/x.png)", got)
}

func TestRewritePaths_AbsentKeyLeavesTextUnchanged(t *testing.T) {
	markdown := "![a](x.png) and ![b](y.png)"
	got := RewritePaths(markdown, map[string]string{"z.png": "https://cdn/z.png"})
	assert.Equal(t, markdown, got)
}

func TestRewritePaths_PreservesAltAndRewritesAllOccurrences(t *testing.T) {
	markdown := "![First chart](c.png)\n![Second chart](c.png)"
	got := RewritePaths(markdown, map[string]string{"c.png": "https://cdn/c.png"})
	assert.Equal(t, "![First chart](https://cdn/c.png)\n![Second chart](https://cdn/c.png)", got)
}

func TestRewritePaths_RegexMetacharactersInPath(t *testing.T) {
	markdown := "![plot](figs/plot(1).png)"
	got := RewritePaths(markdown, map[string]string{"figs/plot(1).png": "https://cdn/p1.png"})
	assert.Equal(t, "![plot](https://cdn/p1.png)", got)
}
