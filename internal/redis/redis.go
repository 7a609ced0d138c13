package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// prayerKey builds the cache key for one date + coordinate pair. Coordinates
// are rounded so nearby lookups share an entry.
func prayerKey(date string, lat, lon float64) string {
	return fmt.Sprintf("layl:prayer:%s:%.2f:%.2f", date, lat, lon)
}

// CachePrayerTimes stores a day's prayer times. Entries outlive the day they
// were fetched for by a few hours so the night span into the next Fajr can
// still be derived after midnight; staleness is checked on read via the Date
// field, not the TTL.
func CachePrayerTimes(ctx context.Context, pt model.PrayerTimes) {
	if Rdb == nil {
		return
	}
	raw, err := json.Marshal(pt)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal prayer times for cache")
		return
	}
	key := prayerKey(pt.Date, pt.Latitude, pt.Longitude)
	if err := Rdb.Set(ctx, key, raw, 30*time.Hour).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to cache prayer times")
	}
}

// GetCachedPrayerTimes returns the cached times for date+coords, or nil when
// absent, unreadable or recorded for a different date.
func GetCachedPrayerTimes(ctx context.Context, date string, lat, lon float64) *model.PrayerTimes {
	if Rdb == nil {
		return nil
	}
	raw, err := Rdb.Get(ctx, prayerKey(date, lat, lon)).Bytes()
	if err != nil {
		return nil
	}
	var pt model.PrayerTimes
	if err := json.Unmarshal(raw, &pt); err != nil {
		log.Warn().Err(err).Msg("corrupted prayer cache entry, ignoring")
		return nil
	}
	if pt.Date != date {
		return nil
	}
	return &pt
}
