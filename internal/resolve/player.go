package resolve

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/provider"
)

// emitPlayer sends a target for a player embed URL, fetching the embed
// page first to pick up a human-readable title. Title lookup is best
// effort only; the embed downloads fine without one.
func (r *Resolver) emitPlayer(ctx context.Context, embedURL, referer string, out chan<- Target) {
	ctx, span := r.tracer.Start(ctx, "resolve.player",
		trace.WithAttributes(attribute.String("embed.url", embedURL)))
	defer span.End()

	t := Target{URL: embedURL, Kind: provider.KindPlayer, Referer: referer}

	body, err := r.client.FetchText(ctx, embedURL, &httpx.Options{Referer: referer})
	if err != nil {
		r.log.Warn().Str("url", embedURL).Err(err).Msg("could not fetch embed page for title")
	} else if title, ok := provider.PageTitle(body); ok {
		t.Title = title
	}

	out <- t
}
