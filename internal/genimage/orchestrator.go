package genimage

import (
	"context"

	"github.com/rs/zerolog/log"
)

// outcome records what one variation call produced. Collecting outcomes
// explicitly (rather than branching inside the loop) keeps the
// failure-absorption policy visible and testable.
type outcome struct {
	dataURL string
	err     error
}

// Orchestrate drives count sequential GenerateOne calls and folds their
// outcomes into an ordered data-URL slice. Calls run one at a time, with each
// outcome observed before the next call is issued, which keeps result
// ordering deterministic and holds in-flight provider load to one call per
// request.
//
// Per-call failures and imageless responses are absorbed: they are logged but
// never abort the loop or surface individually. Partial success is success.
// Only when every call came back without an image does Orchestrate return
// ErrNoImage.
func Orchestrate(ctx context.Context, gen Generator, prompt, aspectRatio string, count int) ([]string, error) {
	count = ClampVariations(count)

	outcomes := make([]outcome, 0, count)
	for i := 0; i < count; i++ {
		log.Debug().Int("variation", i+1).Int("count", count).Msg("Generating image")

		img, err := gen.GenerateOne(ctx, Call{
			Prompt:      prompt,
			AspectRatio: aspectRatio,
			Index:       i,
			Count:       count,
		})
		if err != nil {
			outcomes = append(outcomes, outcome{err: err})
			continue
		}
		outcomes = append(outcomes, outcome{dataURL: img.DataURL()})
	}

	return foldOutcomes(outcomes)
}

// foldOutcomes reduces per-call outcomes to the aggregate result: successful
// data URLs in call order, or ErrNoImage when there were none.
func foldOutcomes(outcomes []outcome) ([]string, error) {
	dataURLs := make([]string, 0, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			log.Warn().Err(o.err).Int("variation", i+1).Msg("Variation produced no image")
			continue
		}
		dataURLs = append(dataURLs, o.dataURL)
	}

	log.Info().
		Int("requested", len(outcomes)).
		Int("generated", len(dataURLs)).
		Msg("Generation complete")

	if len(dataURLs) == 0 {
		return nil, ErrNoImage
	}
	return dataURLs, nil
}
