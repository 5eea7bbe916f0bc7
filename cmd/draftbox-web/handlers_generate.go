package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/javascript4breakfast/draftbox-ai/internal/genimage"
)

// maxBodySize caps the request body; generation requests are a few hundred
// bytes of JSON.
const maxBodySize = 64 * 1024

// genBody is the POST /api/generate request body.
type genBody struct {
	Prompt  string         `json:"prompt"`
	Style   string         `json:"style"`
	Palette string         `json:"palette"`
	Format  string         `json:"format"`
	N       variationCount `json:"n"`
}

// variationCount tolerates clients that send n as a string or a float.
// Anything non-numeric counts as a single variation instead of failing the
// whole body parse.
type variationCount int

func (v *variationCount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = variationCount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*v = variationCount(n)
			return nil
		}
	}
	*v = 1
	return nil
}

// generateResponse carries the ordered image sequence of a successful request.
type generateResponse struct {
	DataURLs []string `json:"dataUrls"`
}

// handleGenerate serves POST /api/generate. Validation failures are the
// caller's fault (400); everything downstream surfaces as one of two generic
// failures so provider-internal detail never leaks: 502 when no variation
// produced an image, 500 for anything unexpected.
func handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body genBody
	// A malformed body is treated like an empty one: it fails the prompt
	// check below rather than producing a distinct error.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body)

	prompt := strings.TrimSpace(body.Prompt)
	if prompt == "" {
		httpError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	n := genimage.ClampVariations(int(body.N))
	aspectRatio := genimage.AspectRatioFor(body.Format)
	finalPrompt := genimage.ComposePrompt(prompt, body.Style, body.Palette)

	log.Info().
		Int("requested", int(body.N)).
		Int("n", n).
		Str("format", body.Format).
		Str("aspectRatio", aspectRatio).
		Msg("Received generation request")

	dataURLs, err := genimage.Orchestrate(r.Context(), generator, finalPrompt, aspectRatio, n)
	if err != nil {
		if errors.Is(err, genimage.ErrNoImage) {
			httpError(w, http.StatusBadGateway, "Model returned no image")
			return
		}
		log.Error().Err(err).Msg("Generation failed")
		httpError(w, http.StatusInternalServerError, "Generation failed")
		return
	}

	respondJSON(w, http.StatusOK, generateResponse{DataURLs: dataURLs})
}

// handleHealth serves GET /health for liveness checks.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
