package genimage

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// MockGenerator synthesizes a placeholder SVG locally instead of calling
// Gemini. It is the designed operating mode for environments without an API
// key (reviewers, CI, offline dev) and always succeeds, so a request for n
// variations yields exactly n images.
type MockGenerator struct{}

// promptPreviewLen is how much of the prompt is echoed into the placeholder.
const promptPreviewLen = 80

// GenerateOne returns an SVG labelled with the variation ordinal, the start
// of the prompt, and the aspect ratio, so the composed request stays visible
// in the rendered output.
func (MockGenerator) GenerateOne(_ context.Context, call Call) (*Image, error) {
	preview := call.Prompt
	if len(preview) > promptPreviewLen {
		preview = preview[:promptPreviewLen]
	}
	label := fmt.Sprintf("MOCK %d/%d: %s • %s", call.Index+1, call.Count, preview, call.AspectRatio)

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1024" height="1024">
  <rect width="100%%" height="100%%" fill="#eee"/>
  <text x="50%%" y="50%%" font-size="24" text-anchor="middle" dominant-baseline="middle">%s</text>
</svg>`, escapeXML(label))

	return &Image{MIMEType: "image/svg+xml", Data: []byte(svg)}, nil
}

// escapeXML escapes text for embedding in the SVG body. Prompts are
// user-controlled, so < and & must not pass through raw.
func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only errors on a failing writer; strings.Builder never fails.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
