package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javascript4breakfast/draftbox-ai/internal/apiclient"
)

// fakeClient records payloads and plays back canned results.
type fakeClient struct {
	payloads []apiclient.GeneratePayload
	urls     []string
	err      error
}

func (f *fakeClient) Generate(_ context.Context, payload apiclient.GeneratePayload) ([]string, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	if f.urls != nil {
		return f.urls, nil
	}
	urls := make([]string, payload.N)
	for i := range urls {
		urls[i] = fmt.Sprintf("data:image/png;base64,img%d", i)
	}
	return urls, nil
}

func newTestStore(client Generator) *Store {
	s := NewStore(client)
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return base }
	return s
}

func TestSubmit_PrependsNewItem(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)
	ctx := context.Background()

	first, err := s.Submit(ctx, Request{Prompt: "a red fox", Format: "landscape", N: 2})
	require.NoError(t, err)
	second, err := s.Submit(ctx, Request{Prompt: "a blue bird", N: 1})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Same(t, second, items[0], "newest first")
	assert.Same(t, first, items[1])

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "a red fox", first.Prompt)
	assert.Len(t, first.Images, 2)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Empty(t, s.Err())
}

func TestSubmit_FailureLeavesHistoryUnchanged(t *testing.T) {
	client := &fakeClient{err: errors.New("Model returned no image")}
	s := newTestStore(client)

	_, err := s.Submit(context.Background(), Request{Prompt: "x", N: 1})
	require.Error(t, err)
	assert.Empty(t, s.Items())
	assert.Equal(t, "Model returned no image", s.Err())
	assert.False(t, s.Pending())
}

func TestSubmit_NewOperationClearsError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	s := newTestStore(client)
	ctx := context.Background()

	_, _ = s.Submit(ctx, Request{Prompt: "x", N: 1})
	require.Equal(t, "boom", s.Err())

	client.err = nil
	_, err := s.Submit(ctx, Request{Prompt: "y", N: 1})
	require.NoError(t, err)
	assert.Empty(t, s.Err())
}

func TestRegenerate_PreservesParametersAndCreatesNewEntry(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)
	ctx := context.Background()

	orig, err := s.Submit(ctx, Request{
		Prompt: "a red fox", Style: "anime", Palette: "neon", Format: "widescreen", N: 3,
	})
	require.NoError(t, err)

	redone, err := s.Regenerate(ctx, orig, 0)
	require.NoError(t, err)

	// Outgoing request must repeat the stored parameters exactly; n defaults
	// to the item's current image count.
	sent := client.payloads[len(client.payloads)-1]
	assert.Equal(t, "a red fox", sent.Prompt)
	assert.Equal(t, "anime", sent.Style)
	assert.Equal(t, "neon", sent.Palette)
	assert.Equal(t, "widescreen", sent.Format)
	assert.Equal(t, 3, sent.N)

	// A new entry, not a replacement.
	assert.NotEqual(t, orig.ID, redone.ID)
	items := s.Items()
	require.Len(t, items, 2)
	assert.Same(t, redone, items[0])
	assert.Same(t, orig, items[1])
}

func TestRegenerate_DefaultsToOneForImagelessItem(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)

	item := &Item{ID: "x", Prompt: "p"}
	_, err := s.Regenerate(context.Background(), item, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, client.payloads[0].N)
}

func TestRefine_OverridesFallBackToItemValues(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)
	ctx := context.Background()

	orig, err := s.Submit(ctx, Request{
		Prompt: "a red fox", Style: "anime", Palette: "neon", Format: "portrait", N: 4,
	})
	require.NoError(t, err)

	refined, err := s.Refine(ctx, orig, Overrides{Prompt: "a red fox at dusk"})
	require.NoError(t, err)

	sent := client.payloads[len(client.payloads)-1]
	assert.Equal(t, "a red fox at dusk", sent.Prompt)
	assert.Equal(t, "anime", sent.Style)
	assert.Equal(t, "neon", sent.Palette)
	assert.Equal(t, "portrait", sent.Format)
	assert.Equal(t, 1, sent.N, "refine defaults to one variation")

	assert.NotEqual(t, orig.ID, refined.ID)
	assert.Len(t, s.Items(), 2)
}

func TestUpdateItemImages_ReplacesInPlace(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)
	ctx := context.Background()

	orig, err := s.Submit(ctx, Request{Prompt: "a red fox", N: 1})
	require.NoError(t, err)
	createdAt := orig.CreatedAt
	oldImages := orig.Images

	updated, err := s.UpdateItemImages(ctx, orig.ID, 4)
	require.NoError(t, err)

	assert.Same(t, orig, updated, "identity preserved")
	assert.Equal(t, createdAt, updated.CreatedAt, "CreatedAt not refreshed")
	assert.Len(t, updated.Images, 4)
	assert.NotEqual(t, oldImages, updated.Images)
	assert.Len(t, s.Items(), 1, "no new entry")
}

func TestUpdateItemImages_UnknownIDIsNoOp(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)

	item, err := s.UpdateItemImages(context.Background(), "nope", 4)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Empty(t, client.payloads, "no network call for unknown id")
	assert.Empty(t, s.Items())
}

func TestUpdateItemImages_FailureKeepsOldImages(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(client)
	ctx := context.Background()

	orig, err := s.Submit(ctx, Request{Prompt: "a red fox", N: 2})
	require.NoError(t, err)
	oldImages := append([]string(nil), orig.Images...)

	client.err = errors.New("Generation failed")
	_, err = s.UpdateItemImages(ctx, orig.ID, 4)
	require.Error(t, err)

	assert.Equal(t, oldImages, orig.Images)
	assert.Equal(t, "Generation failed", s.Err())
}
