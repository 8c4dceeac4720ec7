// Package markdown renders project descriptions for the detail page.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/dboika/folio/logger"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Descriptions are written by the administrator only and may contain the
// HTML produced by older rich-text editors, so raw HTML is passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// Render converts source to HTML. On failure the escaped source is returned.
func Render(source string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		logger.Warning("failed to convert markdown:", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
