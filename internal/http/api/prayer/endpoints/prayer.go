package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/db"
	"github.com/layl-app/layl/internal/http/api"
	"github.com/layl-app/layl/internal/http/api/prayer/packets"
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// PrayerModule mounts the prayer-time and location endpoints (JWT required).
func PrayerModule(prayers *prayer.Service, geocoder *prayer.Geocoder, store db.Store) api.Module {
	ctl := &prayerManager{prayers: prayers, geocoder: geocoder, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/prayer/times", ctl.getTimes)
		c.GET("/prayer/derived", ctl.getDerived)
		c.GET("/prayer/location", ctl.getLocation)
		c.PUT("/prayer/location", ctl.setLocation)
		c.POST("/prayer/location/auto", ctl.autoLocation)
		c.GET("/prayer/cities", ctl.searchCities)
	})
}

type prayerManager struct {
	prayers  *prayer.Service
	geocoder *prayer.Geocoder
	store    db.Store
}

func (m *prayerManager) location() model.Location {
	var loc model.Location
	if ok, err := m.store.GetState(db.StateKeyLocation, &loc); err == nil && ok {
		return loc
	}
	return prayer.FallbackLocation
}

// requestedDate honors an optional ?date=YYYY-MM-DD query, defaulting to today.
func requestedDate(ctx *gin.Context) (time.Time, bool) {
	raw := ctx.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// requestedLocation honors optional ?latitude=&?longitude= overrides, falling
// back to the stored location.
func (m *prayerManager) requestedLocation(ctx *gin.Context) (model.Location, bool) {
	rawLat, rawLon := ctx.Query("latitude"), ctx.Query("longitude")
	if rawLat == "" && rawLon == "" {
		return m.location(), true
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return model.Location{}, false
	}
	return model.Location{Latitude: lat, Longitude: lon}, true
}

// GET /api/prayer/times
func (m *prayerManager) getTimes(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	date, ok := requestedDate(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DD"}
	}
	loc, ok := m.requestedLocation(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "latitude/longitude out of range"}
	}

	pt := m.prayers.TimesFor(ctx.Request.Context(), date, loc.Latitude, loc.Longitude)
	if pt == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return packets.TimesResponse{Location: loc, Times: *pt}, nil
}

// GET /api/prayer/derived
func (m *prayerManager) getDerived(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	date, ok := requestedDate(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DD"}
	}

	beforeMinutes := 30
	if raw := ctx.Query("before_fajr_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "before_fajr_minutes must be a positive integer"}
		}
		beforeMinutes = n
	}

	loc, ok := m.requestedLocation(ctx)
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "latitude/longitude out of range"}
	}
	pt := m.prayers.TimesFor(ctx.Request.Context(), date, loc.Latitude, loc.Longitude)
	if pt == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return packets.DerivedResponse{
		Location: loc,
		Times:    *pt,
		Derived:  prayer.Derive(*pt, beforeMinutes),
	}, nil
}

// GET /api/prayer/location
func (m *prayerManager) getLocation(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	return m.location(), nil
}

// PUT /api/prayer/location
func (m *prayerManager) setLocation(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.SetLocationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.Latitude < -90 || request.Latitude > 90 || request.Longitude < -180 || request.Longitude > 180 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "latitude/longitude out of range"}
	}

	loc := model.Location{
		City:      request.City,
		Country:   request.Country,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
	}
	if err := m.store.SetState(db.StateKeyLocation, loc); err != nil {
		log.Error().Err(err).Msg("location not persisted")
	}
	return loc, nil
}

// POST /api/prayer/location/auto
func (m *prayerManager) autoLocation(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	loc := m.geocoder.LocateByIP(ctx.Request.Context())
	if err := m.store.SetState(db.StateKeyLocation, loc); err != nil {
		log.Error().Err(err).Msg("location not persisted")
	}
	return loc, nil
}

// GET /api/prayer/cities
func (m *prayerManager) searchCities(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	query := ctx.Query("q")
	if query == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "q is required"}
	}
	results := m.geocoder.SearchCities(ctx.Request.Context(), query)
	return packets.CitySearchResponse{Results: results}, nil
}
