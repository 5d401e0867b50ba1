package resolve

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/showcase-dl/showcase-dl/internal/provider"
)

// resolvePage scans an arbitrary page for known embeds and resolves each
// one concurrently. The page's own origin becomes the referer for every
// embed found on it; provider players refuse to serve without it.
func (r *Resolver) resolvePage(ctx context.Context, pageURL string, out chan<- Target) error {
	ctx, span := r.tracer.Start(ctx, "resolve.page")
	defer span.End()

	r.setStageFetching(pageURL)
	body, err := r.client.FetchText(ctx, pageURL, nil)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	r.setStageProcessing()

	referer := provider.PageOrigin(pageURL)
	showcases := provider.ShowcaseEmbeds(body)
	players := provider.PlayerEmbeds(body)

	if len(showcases) == 0 && len(players) == 0 {
		return fmt.Errorf("no supported embeds found on %s", pageURL)
	}
	r.log.Info().Str("url", pageURL).
		Int("showcases", len(showcases)).
		Int("players", len(players)).
		Msg("page scanned")

	g, ctx := errgroup.WithContext(ctx)
	for _, u := range showcases {
		g.Go(func() error {
			if err := r.resolveShowcase(ctx, u, referer, out); err != nil {
				r.log.Error().Str("url", u).Err(err).Msg("showcase embed failed")
			}
			return nil
		})
	}
	for _, u := range players {
		g.Go(func() error {
			r.emitPlayer(ctx, u, referer, out)
			return nil
		})
	}
	return g.Wait()
}
