package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/layl-app/layl/internal/alarm"
	"github.com/layl-app/layl/internal/audio"
	"github.com/layl-app/layl/internal/db"
	"github.com/layl-app/layl/internal/http/api"
	alarmapi "github.com/layl-app/layl/internal/http/api/alarms/endpoints"
	authapi "github.com/layl-app/layl/internal/http/api/auth/endpoints"
	playbackapi "github.com/layl-app/layl/internal/http/api/playback/endpoints"
	prayerapi "github.com/layl-app/layl/internal/http/api/prayer/endpoints"
	soundsapi "github.com/layl-app/layl/internal/http/api/sounds/endpoints"
	"github.com/layl-app/layl/internal/prayer"
	"github.com/layl-app/layl/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	scheduler *alarm.Scheduler,
	prayers *prayer.Service,
	geocoder *prayer.Geocoder,
	arbiter *audio.Arbiter,
	storageSystem storage.Storage,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: env.SecretKey,
	},
		alarmapi.AlarmsModule(scheduler, prayers, store),
		prayerapi.PrayerModule(prayers, geocoder, store),
		playbackapi.PlaybackModule(arbiter),
		soundsapi.SoundsModule(storageSystem),
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	// uploaded sounds are served straight off disk when Spaces is disabled
	if !env.UseSpaces {
		r.Static("/uploads", env.UploadDir)
	}
}
