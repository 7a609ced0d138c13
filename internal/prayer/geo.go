package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
)

// FallbackLocation is used when IP geolocation fails.
var FallbackLocation = model.Location{
	City:      "Makkah",
	Country:   "Saudi Arabia",
	Latitude:  21.4225,
	Longitude: 39.8262,
}

const (
	ipLocateURL         = "http://ip-api.com/json/"
	citySearchURL       = "https://geocoding-api.open-meteo.com/v1/search"
	citySearchFallback  = "https://nominatim.openstreetmap.org/search"
	geoRequestTimeout   = 8 * time.Second
	citySearchMaxResult = 8
)

// Geocoder wraps the IP-geolocation and city-search providers.
type Geocoder struct {
	httpClient *http.Client

	// overridable in tests
	ipURL       string
	searchURL   string
	fallbackURL string
}

func NewGeocoder() *Geocoder {
	return &Geocoder{
		httpClient:  &http.Client{Timeout: geoRequestTimeout},
		ipURL:       ipLocateURL,
		searchURL:   citySearchURL,
		fallbackURL: citySearchFallback,
	}
}

// LocateByIP resolves the caller's approximate location from their IP. On any
// failure it returns the hardcoded fallback rather than an error.
func (g *Geocoder) LocateByIP(ctx context.Context) model.Location {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.ipURL, nil)
	if err != nil {
		return FallbackLocation
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("ip geolocation failed, using fallback location")
		return FallbackLocation
	}
	defer resp.Body.Close()

	var body struct {
		Status  string  `json:"status"`
		City    string  `json:"city"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "success" {
		log.Warn().Msg("ip geolocation returned no usable result, using fallback location")
		return FallbackLocation
	}
	return model.Location{
		City:      body.City,
		Country:   body.Country,
		Latitude:  body.Lat,
		Longitude: body.Lon,
	}
}

// SearchCities resolves a city name to candidate locations. The primary
// geocoding provider is tried first; on a non-success response the secondary
// provider is consulted before giving up.
func (g *Geocoder) SearchCities(ctx context.Context, query string) []model.Location {
	if query == "" {
		return nil
	}
	if results := g.searchPrimary(ctx, query); len(results) > 0 {
		return results
	}
	return g.searchFallback(ctx, query)
}

func (g *Geocoder) searchPrimary(ctx context.Context, query string) []model.Location {
	u := fmt.Sprintf("%s?name=%s&count=%d", g.searchURL, url.QueryEscape(query), citySearchMaxResult)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("city search failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	out := make([]model.Location, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, model.Location{
			City:      r.Name,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return out
}

func (g *Geocoder) searchFallback(ctx context.Context, query string) []model.Location {
	u := fmt.Sprintf("%s?format=json&limit=%d&q=%s", g.fallbackURL, citySearchMaxResult, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "layl-server")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("fallback city search failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	out := make([]model.Location, 0, len(body))
	for _, r := range body {
		var lat, lon float64
		fmt.Sscanf(r.Lat, "%f", &lat)
		fmt.Sscanf(r.Lon, "%f", &lon)
		out = append(out, model.Location{City: r.DisplayName, Latitude: lat, Longitude: lon})
	}
	return out
}
