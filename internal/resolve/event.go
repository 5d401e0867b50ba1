package resolve

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/provider"
)

// viewerSession is the session endpoint's response; only the token matters.
type viewerSession struct {
	JWT string `json:"jwt"`
}

// liveEvent is the live-event API response. clip_to_play is the current
// shape; live_clip is the field older API versions used.
type liveEvent struct {
	ClipToPlay *eventClip `json:"clip_to_play"`
	LiveClip   *eventClip `json:"live_clip"`
}

type eventClip struct {
	ConfigURL string `json:"config_url"`
}

// clipConfig is the player config; share_url is the public video page.
type clipConfig struct {
	Video struct {
		ShareURL string `json:"share_url"`
	} `json:"video"`
}

// resolveEvent runs the four-step event chain: warm the session cookie on
// the event page, obtain a session token, ask the live-event API for the
// current clip's config URL, and read the public share URL out of that
// config. Each step's failure names the step, since the chain breaks in
// different places as the provider changes.
func (r *Resolver) resolveEvent(ctx context.Context, eventURL string, out chan<- Target) error {
	ctx, span := r.tracer.Start(ctx, "resolve.event",
		trace.WithAttributes(attribute.String("event.url", eventURL)))
	defer span.End()

	id, hash, err := provider.EventParams(eventURL)
	if err != nil {
		return err
	}

	r.setStageFetching(eventURL)

	// Step 1: the event page sets the bot-mitigation cookie the API
	// requires. The body itself is irrelevant.
	if _, err := r.client.FetchText(ctx, eventURL, nil); err != nil {
		return fmt.Errorf("event page: %w", err)
	}

	// Step 2: session token.
	body, err := r.client.FetchText(ctx, r.viewerURL, nil)
	if err != nil {
		return fmt.Errorf("viewer session: %w", err)
	}
	var session viewerSession
	if err := json.Unmarshal([]byte(body), &session); err != nil {
		return fmt.Errorf("viewer session: decode: %w", err)
	}
	if session.JWT == "" {
		return fmt.Errorf("viewer session: no token in response")
	}

	// Step 3: the live-event record, narrowed to the clip config field.
	eventRef := id
	if hash != "" {
		eventRef = id + ":" + hash
	}
	apiURL := fmt.Sprintf("%s/live_events/%s?fields=clip_to_play.config_url,live_clip.config_url",
		r.apiBase, eventRef)
	body, err = r.client.FetchText(ctx, apiURL, &httpx.Options{Authorization: "jwt " + session.JWT})
	if err != nil {
		return fmt.Errorf("live event lookup: %w", err)
	}
	var event liveEvent
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return fmt.Errorf("live event lookup: decode: %w", err)
	}

	var configURL string
	switch {
	case event.ClipToPlay != nil && event.ClipToPlay.ConfigURL != "":
		configURL = event.ClipToPlay.ConfigURL
	case event.LiveClip != nil && event.LiveClip.ConfigURL != "":
		configURL = event.LiveClip.ConfigURL
		r.log.Warn().Str("event", eventURL).
			Msg("clip_to_play missing, using legacy live_clip field")
	default:
		return fmt.Errorf("live event lookup: no playable clip on event %s", eventRef)
	}

	// Step 4: the clip config names the public video page.
	body, err = r.client.FetchText(ctx, configURL, nil)
	if err != nil {
		return fmt.Errorf("clip config: %w", err)
	}
	var config clipConfig
	if err := json.Unmarshal([]byte(body), &config); err != nil {
		return fmt.Errorf("clip config: decode: %w", err)
	}
	if config.Video.ShareURL == "" {
		return fmt.Errorf("clip config: no share URL for event %s", eventRef)
	}

	r.setStageProcessing()
	r.emitPlayer(ctx, config.Video.ShareURL, "", out)
	return nil
}
