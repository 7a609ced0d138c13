package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/alarm"
	"github.com/layl-app/layl/internal/audio"
	"github.com/layl-app/layl/internal/db"
	"github.com/layl-app/layl/internal/notify"
	"github.com/layl-app/layl/internal/prayer"
	"github.com/layl-app/layl/internal/redis"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	env := LoadEnvironment()

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := db.NewStore(db.DB)

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set, prayer times will be fetched on every request")
	}

	var notifier alarm.Notifier = notify.NoopNotifier{}
	if env.MQTTBrokerURL != "" {
		mqttNotifier, err := notify.NewMQTTNotifier(env.MQTTBrokerURL, "layl-server")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MQTT broker")
		}
		defer mqttNotifier.Close()
		notifier = mqttNotifier
	} else {
		log.Warn().Msg("MQTT_BROKER_URL not set, alarm events will not be pushed to clients")
	}

	arbiter := audio.NewArbiter()
	prayers := prayer.NewService(prayer.NewClient())
	geocoder := prayer.NewGeocoder()
	scheduler := alarm.New(store, arbiter, notifier, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go scheduler.Run(ctx)

	storageSystem := InitStorage(env)

	r := gin.Default()
	RegisterRoutes(r, env, store, scheduler, prayers, geocoder, arbiter, storageSystem)

	log.Info().Str("address", env.ServerAddress).Msg("layl server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
