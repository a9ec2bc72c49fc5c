package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render("   "))

	html := Render("# Paro\n\nTiger's **Nest**")
	assert.Contains(t, html, "<h1>Paro</h1>")
	assert.Contains(t, html, "<strong>Nest</strong>")
}

func TestRenderDropsRawHTML(t *testing.T) {
	html := Render("hello <script>alert(1)</script>")
	assert.NotContains(t, html, "<script>")
}

func TestRenderImages(t *testing.T) {
	html := Render("![Dzong](/uploads/a.jpg)")
	assert.Contains(t, html, `<img src="/uploads/a.jpg" alt="Dzong" loading="lazy">`)

	html = Render("![!Punakha in spring](/uploads/b.jpg)")
	assert.Contains(t, html, "<figure>")
	assert.Contains(t, html, "<figcaption>Punakha in spring</figcaption>")
	assert.NotContains(t, html, "<p><figure>")
}
