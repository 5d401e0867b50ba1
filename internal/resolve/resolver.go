// Package resolve turns input URLs into downloadable targets by running
// the resolution chain matching each input's provider kind.
package resolve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/provider"
	"github.com/showcase-dl/showcase-dl/internal/state"
	"github.com/showcase-dl/showcase-dl/internal/telemetry"
)

// Input is one URL the user asked for, with an optional referer override.
type Input struct {
	URL     string
	Referer string
}

// Target is one downloadable video produced by resolution.
type Target struct {
	URL     string
	Kind    provider.Kind
	Referer string
	Title   string
}

// Resolver runs resolution chains. One input may fan out into many
// targets (a page with several embeds, a showcase with many clips).
type Resolver struct {
	client *httpx.Client
	log    zerolog.Logger
	tracer trace.Tracer
	store  *state.Store

	viewerURL string
	apiBase   string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStageStore lets the resolver publish coarse progress (fetching,
// processing) to the shared store for the view's banner.
func WithStageStore(store *state.Store) Option {
	return func(r *Resolver) { r.store = store }
}

// WithEventEndpoints overrides the event chain's session and API
// endpoints. Used by tests against local servers.
func WithEventEndpoints(viewerURL, apiBase string) Option {
	return func(r *Resolver) {
		r.viewerURL = viewerURL
		r.apiBase = apiBase
	}
}

func New(client *httpx.Client, log zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		client:    client,
		log:       log.With().Str("component", "resolve").Logger(),
		tracer:    telemetry.Tracer("resolve"),
		viewerURL: "https://vimeo.com/_next/viewer",
		apiBase:   "https://api.vimeo.com",
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve classifies the input and runs the matching chain, sending each
// produced target on out. The error covers the input itself; failures of
// individual embeds inside a page or showcase are logged and skipped so
// one broken embed never sinks its siblings.
func (r *Resolver) Resolve(ctx context.Context, in Input, out chan<- Target) error {
	kind := provider.Detect(in.URL)

	ctx, span := r.tracer.Start(ctx, "resolve",
		trace.WithAttributes(
			attribute.String("input.url", in.URL),
			attribute.String("input.kind", string(kind)),
		))
	defer span.End()

	r.log.Info().Str("url", in.URL).Str("kind", string(kind)).Msg("resolving input")

	switch kind {
	case provider.KindPassthrough:
		// Natively supported by the downloader; hand it over untouched.
		out <- Target{URL: in.URL, Kind: kind, Referer: in.Referer}
		return nil
	case provider.KindPlayer:
		r.emitPlayer(ctx, in.URL, in.Referer, out)
		return nil
	case provider.KindShowcase:
		return r.resolveShowcase(ctx, in.URL, in.Referer, out)
	case provider.KindEvent:
		return r.resolveEvent(ctx, in.URL, out)
	case provider.KindPage:
		return r.resolvePage(ctx, in.URL, out)
	default:
		return fmt.Errorf("unsupported input URL %q", in.URL)
	}
}

func (r *Resolver) setStageFetching(url string) {
	if r.store != nil {
		r.store.SetStageFetching(url)
	}
}

func (r *Resolver) setStageProcessing() {
	if r.store != nil {
		r.store.SetStageProcessing()
	}
}
