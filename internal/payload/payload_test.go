package payload

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

func TestBuild_RequiredOnlyAppliesDefaults(t *testing.T) {
	tests := []struct {
		source domain.Source
		target string
		want   Payload
	}{
		{
			source: domain.SourceGoogleSearch,
			target: "nike",
			want: Payload{
				"source": "google_search", "query": "nike", "domain": "com",
				"start_page": 1, "pages": 1, "limit": 10,
				"user_agent_type": "desktop", "parse": false,
			},
		},
		{
			source: domain.SourceGoogleURL,
			target: "https://www.google.com/search?q=nike",
			want: Payload{
				"source": "google", "url": "https://www.google.com/search?q=nike",
				"user_agent_type": "desktop",
			},
		},
		{
			source: domain.SourceGoogleAds,
			target: "nike",
			want: Payload{
				"source": "google_ads", "query": "nike", "domain": "com",
				"start_page": 1, "pages": 1, "user_agent_type": "desktop",
			},
		},
		{
			source: domain.SourceGoogleSuggestions,
			target: "nike",
			want: Payload{
				"source": "google_suggest", "query": "nike",
				"user_agent_type": "desktop", "render": "html", "parse": false,
			},
		},
		{
			source: domain.SourceGoogleHotels,
			target: "hotels in paris",
			want: Payload{
				"source": "google_hotels", "query": "hotels in paris", "domain": "com",
				"start_page": 1, "pages": 1, "limit": 10,
				"user_agent_type": "desktop", "render": "html", "parse": false,
			},
		},
		{
			source: domain.SourceGoogleTravelHotels,
			target: "hotels in paris",
			want: Payload{
				"source": "google_travel_hotels", "query": "hotels in paris",
				"user_agent_type": "desktop", "render": "html", "parse": false,
			},
		},
		{
			source: domain.SourceGoogleImages,
			target: "cats",
			want: Payload{
				"source": "google_images", "query": "cats", "domain": "com",
				"start_page": 1, "pages": 1, "user_agent_type": "desktop", "parse": false,
			},
		},
		{
			source: domain.SourceGoogleTrendsExplore,
			target: "cats",
			want: Payload{
				"source": "google_trends_explore", "query": "cats", "user_agent_type": "desktop",
			},
		},
		{
			source: domain.SourceBingSearch,
			target: "nike",
			want: Payload{
				"source": "bing_search", "query": "nike", "domain": "com",
				"start_page": 1, "pages": 1, "limit": 10, "user_agent_type": "desktop",
			},
		},
		{
			source: domain.SourceBingURL,
			target: "https://www.bing.com/search?q=nike",
			want: Payload{
				"source": "bing", "url": "https://www.bing.com/search?q=nike",
				"user_agent_type": "desktop",
			},
		},
		{
			source: domain.SourceUniversal,
			target: "https://example.com/product/1",
			want: Payload{
				"source": "universal", "url": "https://example.com/product/1",
				"user_agent_type": "desktop", "content_encoding": "base64",
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			got, err := Build(tt.source, tt.target, Options{})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_EverySourceRegistered(t *testing.T) {
	for _, s := range domain.AllSources() {
		if _, err := Lookup(s); err != nil {
			t.Errorf("Lookup(%s) error = %v", s, err)
		}
	}

	_, err := Lookup("amazon_search")
	if !errors.Is(err, domain.ErrUnknownSource) {
		t.Errorf("Lookup() error = %v, want ErrUnknownSource", err)
	}
}

func TestBuild_OptionsOverrideDefaults(t *testing.T) {
	opts := Options{
		Domain:        "de",
		StartPage:     2,
		Pages:         3,
		Limit:         50,
		UserAgentType: "mobile",
		Locale:        "de-DE",
		GeoLocation:   "Berlin,Germany",
		Render:        "html",
		CallbackURL:   "https://hooks.example.com/cb",
		Parse:         true,
		Context:       []ContextParam{{Key: "filter", Value: 1}},
		ParsingInstructions: map[string]any{
			"title": map[string]any{"_fns": []any{}},
		},
	}

	p, err := Build(domain.SourceGoogleSearch, "adidas", opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	checks := map[string]any{
		"domain":          "de",
		"start_page":      2,
		"pages":           3,
		"limit":           50,
		"user_agent_type": "mobile",
		"locale":          "de-DE",
		"geo_location":    "Berlin,Germany",
		"render":          "html",
		"callback_url":    "https://hooks.example.com/cb",
		"parse":           true,
	}
	for k, want := range checks {
		if !reflect.DeepEqual(p[k], want) {
			t.Errorf("payload[%q] = %v, want %v", k, p[k], want)
		}
	}
	if _, ok := p["context"]; !ok {
		t.Error("payload has no context")
	}
	if _, ok := p["parsing_instructions"]; !ok {
		t.Error("payload has no parsing_instructions")
	}
	if p.Source() != domain.SourceGoogleSearch {
		t.Errorf("Source() = %v", p.Source())
	}
	if p.Target() != "adidas" {
		t.Errorf("Target() = %v", p.Target())
	}
}

func TestBuild_InvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		source domain.Source
		target string
		opts   Options
	}{
		{"empty query", domain.SourceGoogleSearch, "", Options{}},
		{"blank query", domain.SourceBingSearch, "   ", Options{}},
		{"empty url", domain.SourceUniversal, "", Options{}},
		{"url without scheme", domain.SourceUniversal, "example.com", Options{}},
		{"ftp url", domain.SourceUniversal, "ftp://example.com", Options{}},
		{"non-google url", domain.SourceGoogleURL, "https://example.com", Options{}},
		{"non-bing url", domain.SourceBingURL, "https://www.google.com", Options{}},
		{"negative pages", domain.SourceGoogleSearch, "q", Options{Pages: -1}},
		{"negative start page", domain.SourceGoogleAds, "q", Options{StartPage: -2}},
		{"negative limit", domain.SourceBingSearch, "q", Options{Limit: -10}},
		{"unknown user agent", domain.SourceGoogleSearch, "q", Options{UserAgentType: "fridge"}},
		{"unknown render", domain.SourceGoogleSearch, "q", Options{Render: "pdf"}},
		{"parsing instructions without parse", domain.SourceGoogleSearch, "q", Options{ParsingInstructions: map[string]any{"a": 1}}},
		{"bad callback url", domain.SourceGoogleSearch, "q", Options{CallbackURL: "not a url"}},
		{"empty context key", domain.SourceGoogleSearch, "q", Options{Context: []ContextParam{{Value: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.source, tt.target, tt.opts)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Build() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
