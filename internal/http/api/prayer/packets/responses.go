package packets

import (
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// TimesResponse bundles one day's fetched times with the location they were
// computed for.
type TimesResponse struct {
	Location model.Location    `json:"location"`
	Times    model.PrayerTimes `json:"times"`
}

type DerivedResponse struct {
	Location model.Location      `json:"location"`
	Times    model.PrayerTimes   `json:"times"`
	Derived  prayer.DerivedTimes `json:"derived"`
}

type CitySearchResponse struct {
	Results []model.Location `json:"results"`
}
