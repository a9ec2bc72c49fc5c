// Package markdown renders admin-authored descriptions to HTML. Raw HTML in
// the source is dropped.
package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var (
	imageTagRegex        = regexp.MustCompile(`(?is)<img\s+[^>]*>`)
	imageAttrRegex       = regexp.MustCompile(`([a-zA-Z:_-]+)\s*=\s*"([^"]*)"`)
	figureParagraphRegex = regexp.MustCompile(`(?is)<p>\s*(<figure>[\s\S]*?</figure>)\s*</p>`)
)

// Render converts text to HTML. Images become lazy-loaded; an alt text
// starting with "!" turns the image into a captioned figure.
func Render(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var out bytes.Buffer
	if err := engine.Convert([]byte(text), &out); err != nil {
		return "<p>" + template.HTMLEscapeString(text) + "</p>"
	}
	return rewriteImages(out.String())
}

func rewriteImages(html string) string {
	processed := imageTagRegex.ReplaceAllStringFunc(html, func(tag string) string {
		attrs := parseAttrs(tag)
		src := strings.TrimSpace(attrs["src"])
		if src == "" {
			return tag
		}
		// goldmark already escaped attribute values
		alt := strings.TrimSpace(attrs["alt"])
		if caption, ok := strings.CutPrefix(alt, "!"); ok {
			caption = strings.TrimSpace(caption)
			if caption == "" {
				caption = attrs["title"]
			}
			return `<figure><img src="` + src + `" alt="` + caption + `" loading="lazy"><figcaption>` + caption + `</figcaption></figure>`
		}
		return `<img src="` + src + `" alt="` + alt + `" loading="lazy">`
	})
	return figureParagraphRegex.ReplaceAllString(processed, "$1")
}

func parseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range imageAttrRegex.FindAllStringSubmatch(tag, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if key != "" {
			attrs[key] = m[2]
		}
	}
	return attrs
}
