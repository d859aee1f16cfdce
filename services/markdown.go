package services

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractImageReferences returns the destination of every image reference
// (![alt](path)) in the markdown, in document order, duplicates included.
func ExtractImageReferences(markdown string) []string {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var refs []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if image, ok := n.(*ast.Image); ok && entering {
			refs = append(refs, string(image.Destination))
		}
		return ast.WalkContinue, nil
	})
	return refs
}

// RewritePaths replaces every image reference whose destination is a key of
// mapping with the mapped URL, preserving the alt text. Keys are matched as
// literal strings, so paths containing regex metacharacters behave correctly.
// Destinations absent from mapping are left untouched.
func RewritePaths(markdown string, mapping map[string]string) string {
	for original, newURL := range mapping {
		pattern := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(original) + `\)`)
		markdown = pattern.ReplaceAllStringFunc(markdown, func(match string) string {
			alt := pattern.FindStringSubmatch(match)[1]
			return "![" + alt + "](" + newURL + ")"
		})
	}
	return markdown
}
