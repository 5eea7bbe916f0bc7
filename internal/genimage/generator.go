// Package genimage implements the image-generation core: prompt composition,
// the generator capability shared by the mock and Gemini implementations, and
// the orchestrator that turns one request into 1 to 4 sequential provider calls.
package genimage

import (
	"context"
	"encoding/base64"
	"errors"
)

// ErrNoImage marks a call (or a whole request) that completed without
// producing a usable image part. The orchestrator returns it only when every
// attempted variation failed or came back imageless.
var ErrNoImage = errors.New("model returned no image")

// Call describes one generation attempt. Index and Count identify the
// variation within its request (0-based index, total requested) so that
// generators can label their output; the prompt and aspect ratio are shared
// by every call of a request.
type Call struct {
	Prompt      string
	AspectRatio string
	Index       int
	Count       int
}

// Image is one generated image as returned by a provider.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL renders the image as a data: URI, the only form in which images
// travel through the API and the history store.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Generator is the capability both the mock and the Gemini implementation
// provide. GenerateOne performs a single provider call and never panics past
// its boundary: transport, auth and quota problems come back as errors, and a
// structurally-successful response with no image part comes back as
// ErrNoImage.
type Generator interface {
	GenerateOne(ctx context.Context, call Call) (*Image, error)
}
