package prayer

import (
	"context"
	"time"

	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/redis"
)

// Service fronts the timings client with the Redis day-cache: same-date cache
// hits short-circuit the network call, and fresh fetches are written back.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

// TimesFor returns the prayer times for date at (lat, lon), or nil when both
// the cache and the remote API come up empty. A cache entry recorded for a
// different date is ignored, never served.
func (s *Service) TimesFor(ctx context.Context, date time.Time, lat, lon float64) *model.PrayerTimes {
	day := date.Format("2006-01-02")
	if cached := redis.GetCachedPrayerTimes(ctx, day, lat, lon); cached != nil {
		return cached
	}

	pt := s.client.Timings(ctx, date, lat, lon)
	if pt == nil {
		return nil
	}
	redis.CachePrayerTimes(ctx, *pt)
	return pt
}

// DerivedTimes bundles the prayer-derived timestamps the bedtime features use.
type DerivedTimes struct {
	LastThird   string `json:"last_third"`
	BeforeFajr  string `json:"before_fajr"`
	Qailulah    string `json:"qailulah"`
	NightLength string `json:"night_length"`
}

// Derive computes the tahajjud, pre-Fajr and qailulah times for one day's
// prayer times.
func Derive(pt model.PrayerTimes, beforeFajrMinutes int) DerivedTimes {
	d := DerivedTimes{
		LastThird:  LastThirdOfNight(pt.Maghrib, pt.Fajr),
		BeforeFajr: TimeBeforeFajr(pt.Fajr, beforeFajrMinutes),
		Qailulah:   RecommendedQailulahTime(pt.Dhuhr),
	}
	if night, ok := NightDuration(pt.Maghrib, pt.Fajr); ok {
		d.NightLength = FormatDuration(night)
	}
	return d
}
