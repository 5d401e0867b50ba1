package provider

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Kind
	}{
		{
			name:     "player embed",
			input:    "https://player.vimeo.com/video/123456?h=abc",
			expected: KindPlayer,
		},
		{
			name:     "showcase",
			input:    "https://vimeo.com/showcase/7008490",
			expected: KindShowcase,
		},
		{
			name:     "event",
			input:    "https://vimeo.com/event/5038233",
			expected: KindEvent,
		},
		{
			name:     "event with hash",
			input:    "https://vimeo.com/event/5038233/8a3dc2ff61",
			expected: KindEvent,
		},
		{
			name:     "native video page",
			input:    "https://vimeo.com/76979871",
			expected: KindPassthrough,
		},
		{
			name:     "arbitrary page",
			input:    "https://example.com/talks/keynote",
			expected: KindPage,
		},
		{
			name:     "http page",
			input:    "http://example.com/",
			expected: KindPage,
		},
		{
			name:     "empty",
			input:    "",
			expected: KindUnknown,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: KindUnknown,
		},
		{
			name:     "not a URL",
			input:    "watch this video",
			expected: KindUnknown,
		},
		{
			name:     "unsupported scheme",
			input:    "ftp://example.com/video.mp4",
			expected: KindUnknown,
		},
		{
			name:     "scheme only",
			input:    "https://",
			expected: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.input); got != tt.expected {
				t.Errorf("Detect(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPageOrigin(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/talks/keynote?x=1", "https://example.com/"},
		{"http://sub.example.org/page", "http://sub.example.org/"},
		{"not a url", ""},
	}

	for _, tt := range tests {
		if got := PageOrigin(tt.input); got != tt.expected {
			t.Errorf("PageOrigin(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
