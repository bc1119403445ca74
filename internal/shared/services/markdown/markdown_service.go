package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns user supplied markdown (KB answers, follow-up comments)
// into HTML that is safe to embed.
type Renderer interface {
	ToHTMLSanitized(markdown string) (string, error)
	// Render never fails; on conversion errors it returns the escaped source.
	Render(markdown string) string
}

type renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			goldhtml.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	policy.RequireNoFollowOnLinks(true)

	return &renderer{md: md, policy: policy}
}

func (r *renderer) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

func (r *renderer) Render(markdown string) string {
	out, err := r.ToHTMLSanitized(markdown)
	if err != nil {
		return "<p>" + html.EscapeString(markdown) + "</p>"
	}
	return out
}
