package payload

import (
	"fmt"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

var layouts = map[domain.Source]layout{
	// google
	domain.SourceGoogleSearch: {
		source: domain.SourceGoogleSearch, targetKey: "query",
		domain: "com", paginate: true, limit: true, parse: true,
	},
	domain.SourceGoogleURL: {
		source: domain.SourceGoogleURL, targetKey: "url", host: "google.",
	},
	domain.SourceGoogleAds: {
		source: domain.SourceGoogleAds, targetKey: "query",
		domain: "com", paginate: true,
	},
	domain.SourceGoogleSuggestions: {
		source: domain.SourceGoogleSuggestions, targetKey: "query",
		render: "html", parse: true,
	},
	domain.SourceGoogleHotels: {
		source: domain.SourceGoogleHotels, targetKey: "query",
		domain: "com", paginate: true, limit: true, render: "html", parse: true,
	},
	domain.SourceGoogleTravelHotels: {
		source: domain.SourceGoogleTravelHotels, targetKey: "query",
		render: "html", parse: true,
	},
	domain.SourceGoogleImages: {
		source: domain.SourceGoogleImages, targetKey: "query",
		domain: "com", paginate: true, parse: true,
	},
	domain.SourceGoogleTrendsExplore: {
		source: domain.SourceGoogleTrendsExplore, targetKey: "query",
	},

	// bing
	domain.SourceBingSearch: {
		source: domain.SourceBingSearch, targetKey: "query",
		domain: "com", paginate: true, limit: true,
	},
	domain.SourceBingURL: {
		source: domain.SourceBingURL, targetKey: "url", host: "bing.",
	},

	domain.SourceUniversal: {
		source: domain.SourceUniversal, targetKey: "url",
		contentEncoding: "base64",
	},
}

// Lookup возвращает билдер для source
func Lookup(source domain.Source) (Builder, error) {
	l, ok := layouts[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, source)
	}
	return l.build, nil
}

// Build - короткий путь Lookup + вызов
func Build(source domain.Source, target string, opts Options) (Payload, error) {
	b, err := Lookup(source)
	if err != nil {
		return nil, err
	}
	return b(target, opts)
}
