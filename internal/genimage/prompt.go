package genimage

import "strings"

// Format values accepted by the API. Anything else falls back to square.
const (
	FormatSquare     = "square"
	FormatLandscape  = "landscape"
	FormatPortrait   = "portrait"
	FormatWidescreen = "widescreen"
)

// PaletteDefault is the sentinel palette value meaning "no palette chosen";
// it is never appended to the composed prompt.
const PaletteDefault = "default"

// formatToRatio maps the public format names to Gemini aspect-ratio strings.
var formatToRatio = map[string]string{
	FormatSquare:     "1:1",
	FormatLandscape:  "4:3",
	FormatPortrait:   "3:4",
	FormatWidescreen: "16:9",
}

// StyleOptions and PaletteOptions are the choices offered by the web UI.
// The server does not validate against them (style and palette are free-form)
// but clients and tests share this single source of truth.
var (
	StyleOptions = []string{
		"photorealistic", "anime", "watercolor", "low-poly",
		"isometric", "pixel art", "3D render", "oil painting",
	}
	PaletteOptions = []string{
		PaletteDefault, "pastel", "neon", "monochrome",
		"earth tones", "duotone", "vibrant",
	}
)

// AspectRatioFor resolves a format name to its aspect ratio.
// Unknown or empty formats resolve to 1:1.
func AspectRatioFor(format string) string {
	if r, ok := formatToRatio[format]; ok {
		return r
	}
	return "1:1"
}

// ComposePrompt assembles the final prompt sent to the model from the base
// prompt and the optional style and palette selections. Empty segments are
// dropped entirely, so the result never carries stray separators. The caller
// is responsible for rejecting an empty base prompt.
func ComposePrompt(base, style, palette string) string {
	segments := make([]string, 0, 3)
	if s := strings.TrimSpace(base); s != "" {
		segments = append(segments, s)
	}
	if s := strings.TrimSpace(style); s != "" {
		segments = append(segments, "Style: "+s+".")
	}
	if p := strings.TrimSpace(palette); p != "" && p != PaletteDefault {
		segments = append(segments, "Color palette: "+p+".")
	}
	return strings.Join(segments, " ")
}

// ClampVariations bounds a requested variation count to the supported [1,4]
// range. Zero and negative values raise to 1.
func ClampVariations(n int) int {
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}
