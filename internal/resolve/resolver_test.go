package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/showcase-dl/showcase-dl/internal/httpx"
	"github.com/showcase-dl/showcase-dl/internal/provider"
)

// rewriteTransport sends every request to the test server regardless of
// the hostname, so fixed provider URLs resolve against local handlers.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone before rewriting: the client files response cookies under
	// req.URL, which must keep the original hostname.
	clone := req.Clone(req.Context())
	clone.URL.Scheme = rt.target.Scheme
	clone.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

// noNetwork fails every request; used to prove a path makes none.
type noNetwork struct{}

func (noNetwork) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("unexpected network access")
}

func newTestResolver(t *testing.T, handler http.Handler, opts ...Option) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client, err := httpx.New("test-agent", zerolog.Nop(), httpx.WithTransport(rewriteTransport{target: target}))
	require.NoError(t, err)

	return New(client, zerolog.Nop(), opts...)
}

// collect runs one resolution and drains its targets.
func collect(t *testing.T, r *Resolver, in Input) ([]Target, error) {
	t.Helper()
	out := make(chan Target, 32)
	err := r.Resolve(context.Background(), in, out)
	close(out)

	var targets []Target
	for tgt := range out {
		targets = append(targets, tgt)
	}
	return targets, err
}

func TestResolvePassthrough(t *testing.T) {
	client, err := httpx.New("test-agent", zerolog.Nop(), httpx.WithTransport(noNetwork{}))
	require.NoError(t, err)
	r := New(client, zerolog.Nop())

	out := make(chan Target, 1)
	err = r.Resolve(context.Background(), Input{URL: "https://vimeo.com/76979871", Referer: "https://example.com/"}, out)
	require.NoError(t, err)
	close(out)

	tgt := <-out
	require.Equal(t, "https://vimeo.com/76979871", tgt.URL)
	require.Equal(t, provider.KindPassthrough, tgt.Kind)
	require.Equal(t, "https://example.com/", tgt.Referer)
}

func TestResolveUnknownInput(t *testing.T) {
	client, err := httpx.New("test-agent", zerolog.Nop(), httpx.WithTransport(noNetwork{}))
	require.NoError(t, err)
	r := New(client, zerolog.Nop())

	out := make(chan Target, 1)
	err = r.Resolve(context.Background(), Input{URL: "not a url"}, out)
	require.Error(t, err)
}

func TestResolvePlayerTitle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/video/111", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Act One &amp; Two</title></head></html>"))
	})

	r := newTestResolver(t, mux)
	targets, err := collect(t, r, Input{URL: "https://player.vimeo.com/video/111", Referer: "https://example.com/"})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Equal(t, "https://player.vimeo.com/video/111", targets[0].URL)
	require.Equal(t, "Act One & Two", targets[0].Title)
	require.Equal(t, "https://example.com/", targets[0].Referer)
}

func TestResolvePlayerTitleFetchFails(t *testing.T) {
	// Title lookup is best effort: a broken embed page still produces
	// a target, just without a title.
	mux := http.NewServeMux() // 404 for everything

	r := newTestResolver(t, mux)
	targets, err := collect(t, r, Input{URL: "https://player.vimeo.com/video/111"})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Empty(t, targets[0].Title)
}

func TestResolvePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recital", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<iframe class="v" src="https://player.vimeo.com/video/111"></iframe>
<iframe class="v" src="https://player.vimeo.com/video/222"></iframe>
</body></html>`))
	})
	mux.HandleFunc("/video/111", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>First</title></head></html>"))
	})
	// /video/222 404s: its title is lost but the target still comes out.

	r := newTestResolver(t, mux)
	targets, err := collect(t, r, Input{URL: "https://example.com/recital"})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	byURL := map[string]Target{}
	for _, tgt := range targets {
		byURL[tgt.URL] = tgt
	}
	first := byURL["https://player.vimeo.com/video/111"]
	require.Equal(t, "First", first.Title)
	require.Equal(t, "https://example.com/", first.Referer)

	second := byURL["https://player.vimeo.com/video/222"]
	require.Equal(t, provider.KindPlayer, second.Kind)
	require.Empty(t, second.Title)
}

func TestResolvePageNoEmbeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing embedded</body></html>"))
	})

	r := newTestResolver(t, mux)
	targets, err := collect(t, r, Input{URL: "https://example.com/empty"})
	require.Error(t, err)
	require.Empty(t, targets)
}

func TestResolveShowcase(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/showcase/9", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<script>[{"itemListElement":[` +
			`{"name":"Act One &amp; Two","embedUrl":"https://player.vimeo.com/video/111"},` +
			`{"name":"No Embed"},` +
			`{"name":"Act Three","embedUrl":"https://player.vimeo.com/video/222"}` +
			`],"@type":"ItemList","@context":"http://schema.org"}]</script>`))
	})

	r := newTestResolver(t, mux)
	targets, err := collect(t, r, Input{URL: "https://vimeo.com/showcase/9"})
	require.NoError(t, err)

	// The clip without an embed URL is skipped, not fatal.
	require.Len(t, targets, 2)
	require.Equal(t, "https://player.vimeo.com/video/111", targets[0].URL)
	require.Equal(t, "Act One & Two", targets[0].Title)
	require.Equal(t, "https://vimeo.com/showcase/9", targets[0].Referer)
	require.Equal(t, provider.KindPlayer, targets[0].Kind)
	require.Equal(t, "Act Three", targets[1].Title)
}

func TestResolveShowcaseWithoutClipList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/showcase/9", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>login required</body></html>"))
	})

	r := newTestResolver(t, mux)
	_, err := collect(t, r, Input{URL: "https://vimeo.com/showcase/9"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no clip list")
}
