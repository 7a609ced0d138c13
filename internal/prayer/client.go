package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
)

const defaultTimingsBaseURL = "https://api.aladhan.com/v1"

// calculation method 4 = Umm Al-Qura, Makkah
const calculationMethod = 4

// Client fetches daily prayer times from the Al Adhan API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultTimingsBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// timingsResponse is the Al Adhan envelope, trimmed to the fields we read.
type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings struct {
			Fajr    string `json:"Fajr"`
			Sunrise string `json:"Sunrise"`
			Dhuhr   string `json:"Dhuhr"`
			Asr     string `json:"Asr"`
			Maghrib string `json:"Maghrib"`
			Isha    string `json:"Isha"`
		} `json:"timings"`
	} `json:"data"`
}

// Timings returns the prayer times for one date and coordinate pair, or nil on
// any failure. Partial records are never returned.
func (c *Client) Timings(ctx context.Context, date time.Time, lat, lon float64) *model.PrayerTimes {
	url := fmt.Sprintf("%s/timings/%s?latitude=%f&longitude=%f&method=%d",
		c.baseURL, date.Format("02-01-2006"), lat, lon, calculationMethod)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("prayer times fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("prayer times fetch returned non-200")
		return nil
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warn().Err(err).Msg("prayer times response unparseable")
		return nil
	}
	if body.Code != 200 {
		return nil
	}

	pt := model.PrayerTimes{
		Date:      date.Format("2006-01-02"),
		Latitude:  lat,
		Longitude: lon,
		Fajr:      stripTimezoneSuffix(body.Data.Timings.Fajr),
		Sunrise:   stripTimezoneSuffix(body.Data.Timings.Sunrise),
		Dhuhr:     stripTimezoneSuffix(body.Data.Timings.Dhuhr),
		Asr:       stripTimezoneSuffix(body.Data.Timings.Asr),
		Maghrib:   stripTimezoneSuffix(body.Data.Timings.Maghrib),
		Isha:      stripTimezoneSuffix(body.Data.Timings.Isha),
	}
	if pt.Fajr == "" || pt.Maghrib == "" || pt.Isha == "" {
		return nil
	}
	return &pt
}

// the API may append a timezone label like "05:12 (BST)"
func stripTimezoneSuffix(s string) string {
	if i := strings.Index(s, " "); i >= 0 {
		return s[:i]
	}
	return s
}
