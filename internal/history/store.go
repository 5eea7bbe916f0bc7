// Package history holds the session-scoped record of past generations and the
// operations a client surface drives against it: submit, regenerate, refine,
// and in-place variation replacement.
//
// The store assumes at most one operation is in flight at a time; the calling
// surface must disable new submissions while Pending() is true. It does not
// lock internally, queue, or reject concurrent calls.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/javascript4breakfast/draftbox-ai/internal/apiclient"
	"github.com/javascript4breakfast/draftbox-ai/internal/genimage"
)

// Generator is the network boundary the store drives. *apiclient.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, payload apiclient.GeneratePayload) ([]string, error)
}

// Item is one recorded generation. ID never changes for the item's lifetime;
// CreatedAt is set once and survives in-place image replacement.
type Item struct {
	ID        string
	Prompt    string
	Style     string
	Palette   string
	Format    string
	Images    []string
	CreatedAt time.Time
}

// Request carries the parameters of a new generation.
type Request struct {
	Prompt  string
	Style   string
	Palette string
	Format  string
	N       int
}

// Overrides selectively replaces fields of an existing item for Refine.
// An empty string keeps the item's stored value; N at or below zero defaults
// to a single variation.
type Overrides struct {
	Prompt  string
	Style   string
	Palette string
	Format  string
	N       int
}

// Store is the session history. Newest items come first.
type Store struct {
	client  Generator
	items   []*Item
	errMsg  string
	pending bool

	// Injectable for tests.
	now   func() time.Time
	newID func() string
}

// NewStore creates an empty history store backed by the given network client.
func NewStore(client Generator) *Store {
	return &Store{
		client: client,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Items returns the history, newest first. The returned slice is a copy; the
// items themselves are owned by the store.
func (s *Store) Items() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Err returns the message of the most recent failed operation, or "" when the
// last operation succeeded. Starting a new operation clears it.
func (s *Store) Err() string {
	return s.errMsg
}

// Pending reports whether an operation is in flight.
func (s *Store) Pending() bool {
	return s.pending
}

// Submit runs a generation and, on success, prepends a new item to history.
// On failure the error message is recorded and history is left unchanged.
func (s *Store) Submit(ctx context.Context, req Request) (*Item, error) {
	return s.createEntry(ctx, req)
}

// Regenerate re-runs an item's exact stored parameters. It always creates a
// new history entry so the prior result stays available for comparison; use
// UpdateItemImages to replace images in place. When n is zero or negative it
// defaults to the item's current image count (or 1), clamped to [1,4].
func (s *Store) Regenerate(ctx context.Context, item *Item, n int) (*Item, error) {
	if n <= 0 {
		n = len(item.Images)
	}
	n = genimage.ClampVariations(n)

	return s.createEntry(ctx, Request{
		Prompt:  item.Prompt,
		Style:   item.Style,
		Palette: item.Palette,
		Format:  item.Format,
		N:       n,
	})
}

// Refine runs a generation with the item's parameters selectively overridden,
// always creating a new entry. The variation count defaults to 1 regardless
// of how many images the original item carried.
func (s *Store) Refine(ctx context.Context, item *Item, ov Overrides) (*Item, error) {
	req := Request{
		Prompt:  item.Prompt,
		Style:   item.Style,
		Palette: item.Palette,
		Format:  item.Format,
		N:       1,
	}
	if ov.Prompt != "" {
		req.Prompt = ov.Prompt
	}
	if ov.Style != "" {
		req.Style = ov.Style
	}
	if ov.Palette != "" {
		req.Palette = ov.Palette
	}
	if ov.Format != "" {
		req.Format = ov.Format
	}
	if ov.N > 0 {
		req.N = genimage.ClampVariations(ov.N)
	}

	return s.createEntry(ctx, req)
}

// UpdateItemImages regenerates n variations with the stored parameters of the
// item identified by id and overwrites only that item's images. Identity and
// CreatedAt are preserved. An unknown id is a no-op: history stays unchanged
// and no network call is issued. On failure the item's images are untouched.
func (s *Store) UpdateItemImages(ctx context.Context, id string, n int) (*Item, error) {
	item := s.find(id)
	if item == nil {
		log.Debug().Str("id", id).Msg("UpdateItemImages: unknown item, skipping")
		return nil, nil
	}
	if n <= 0 {
		n = 4
	}
	n = genimage.ClampVariations(n)

	urls, err := s.run(ctx, Request{
		Prompt:  item.Prompt,
		Style:   item.Style,
		Palette: item.Palette,
		Format:  item.Format,
		N:       n,
	})
	if err != nil {
		return nil, err
	}

	item.Images = urls
	return item, nil
}

// createEntry runs a generation and prepends a new item on success.
func (s *Store) createEntry(ctx context.Context, req Request) (*Item, error) {
	urls, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:        s.newID(),
		Prompt:    req.Prompt,
		Style:     req.Style,
		Palette:   req.Palette,
		Format:    req.Format,
		Images:    urls,
		CreatedAt: s.now(),
	}
	s.items = append([]*Item{item}, s.items...)
	return item, nil
}

// run is the shared pending/error state transition around one network call.
func (s *Store) run(ctx context.Context, req Request) ([]string, error) {
	s.errMsg = ""
	s.pending = true
	defer func() { s.pending = false }()

	urls, err := s.client.Generate(ctx, apiclient.GeneratePayload{
		Prompt:  req.Prompt,
		Style:   req.Style,
		Palette: req.Palette,
		Format:  req.Format,
		N:       req.N,
	})
	if err != nil {
		s.errMsg = err.Error()
		log.Warn().Err(err).Msg("Generation failed")
		return nil, err
	}
	return urls, nil
}

func (s *Store) find(id string) *Item {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
