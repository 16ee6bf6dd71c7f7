package domain

type Source string

const (
	SourceGoogleSearch        Source = "google_search"
	SourceGoogleURL           Source = "google"
	SourceGoogleAds           Source = "google_ads"
	SourceGoogleSuggestions   Source = "google_suggest"
	SourceGoogleHotels        Source = "google_hotels"
	SourceGoogleTravelHotels  Source = "google_travel_hotels"
	SourceGoogleImages        Source = "google_images"
	SourceGoogleTrendsExplore Source = "google_trends_explore"
	SourceBingSearch          Source = "bing_search"
	SourceBingURL             Source = "bing"
	SourceUniversal           Source = "universal"
)

var allSources = []Source{
	SourceGoogleSearch,
	SourceGoogleURL,
	SourceGoogleAds,
	SourceGoogleSuggestions,
	SourceGoogleHotels,
	SourceGoogleTravelHotels,
	SourceGoogleImages,
	SourceGoogleTrendsExplore,
	SourceBingSearch,
	SourceBingURL,
	SourceUniversal,
}

func AllSources() []Source {
	out := make([]Source, len(allSources))
	copy(out, allSources)
	return out
}

func (s Source) IsValid() bool {
	for _, src := range allSources {
		if s == src {
			return true
		}
	}
	return false
}

// Defaults - семейство продукта определяет таймауты по умолчанию
func (s Source) Defaults() Defaults {
	if s == SourceUniversal {
		return EcommerceDefaults
	}
	return SERPDefaults
}
