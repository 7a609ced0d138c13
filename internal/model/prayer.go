package model

// PrayerTimes holds one day's prayer times for one coordinate pair, as the
// remote calculation API returns them: "HH:MM" strings in the location's
// local clock.
type PrayerTimes struct {
	Date      string  `json:"date"` // "2006-01-02"
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Fajr      string  `json:"fajr"`
	Sunrise   string  `json:"sunrise"`
	Dhuhr     string  `json:"dhuhr"`
	Asr       string  `json:"asr"`
	Maghrib   string  `json:"maghrib"`
	Isha      string  `json:"isha"`
}

// Location is the user's stored prayer-time location.
type Location struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
