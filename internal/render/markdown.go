// Package render turns note bodies into HTML for the editor preview.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// raw HTML in note bodies is dropped (goldmark default)
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders GitHub-flavoured Markdown to HTML.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
