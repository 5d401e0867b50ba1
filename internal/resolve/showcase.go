package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/provider"
)

// showcaseClip is one element of the showcase page's schema.org ItemList.
type showcaseClip struct {
	Name     string `json:"name"`
	EmbedURL string `json:"embedUrl"`
}

// resolveShowcase fetches a showcase page, extracts its clip list and
// emits one player target per clip. A clip without an embed URL is
// skipped with a log entry; the rest of the list still resolves.
func (r *Resolver) resolveShowcase(ctx context.Context, showcaseURL, referer string, out chan<- Target) error {
	ctx, span := r.tracer.Start(ctx, "resolve.showcase",
		trace.WithAttributes(attribute.String("showcase.url", showcaseURL)))
	defer span.End()

	r.setStageFetching(showcaseURL)
	body, err := r.client.FetchText(ctx, showcaseURL, &httpx.Options{Referer: referer})
	if err != nil {
		return fmt.Errorf("fetch showcase: %w", err)
	}
	r.setStageProcessing()

	raw, ok := provider.ShowcaseConfig(body)
	if !ok {
		return fmt.Errorf("no clip list found on %s", showcaseURL)
	}

	var clips []showcaseClip
	if err := json.Unmarshal([]byte(raw), &clips); err != nil {
		return fmt.Errorf("decode clip list from %s: %w", showcaseURL, err)
	}
	r.log.Info().Str("url", showcaseURL).Int("clips", len(clips)).Msg("showcase resolved")

	for _, clip := range clips {
		if clip.EmbedURL == "" {
			r.log.Warn().Str("showcase", showcaseURL).Str("name", clip.Name).
				Msg("clip has no embed URL, skipping")
			continue
		}
		// The showcase URL itself is the referer the player checks for.
		out <- Target{
			URL:     clip.EmbedURL,
			Kind:    provider.KindPlayer,
			Referer: showcaseURL,
			Title:   html.UnescapeString(clip.Name),
		}
	}
	return nil
}
