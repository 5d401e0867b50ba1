package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestFetchTextHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("body text"))
	}))
	defer srv.Close()

	c, err := New("agent-under-test", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	body, err := c.FetchText(context.Background(), srv.URL, &Options{
		Referer:       "https://example.com/",
		Authorization: "jwt token-123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if body != "body text" {
		t.Errorf("body = %q", body)
	}
	if ua := got.Get("User-Agent"); ua != "agent-under-test" {
		t.Errorf("User-Agent = %q", ua)
	}
	if ref := got.Get("Referer"); ref != "https://example.com/" {
		t.Errorf("Referer = %q", ref)
	}
	if auth := got.Get("Authorization"); auth != "jwt token-123" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestFetchTextNilOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "" || r.Header.Get("Authorization") != "" {
			t.Error("unexpected headers set without options")
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := New("agent", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchText(context.Background(), srv.URL, nil); err != nil {
		t.Fatal(err)
	}
}

func TestFetchTextBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New("agent", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.FetchText(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("error = %v, want ErrBadStatus", err)
	}
}

func TestFetchTextKeepsCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil || c.Value != "abc" {
			http.Error(w, "no cookie", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New("agent", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := c.FetchText(ctx, srv.URL+"/set", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchText(ctx, srv.URL+"/check", nil); err != nil {
		t.Errorf("cookie not carried to second request: %v", err)
	}
}
