package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/events"
	router "caravan/internal/http"
	"caravan/internal/http/handlers"
	"caravan/internal/lock"
	"caravan/internal/services"
	"caravan/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	level := zerolog.InfoLevel
	if env.GinMode == gin.DebugMode {
		level = zerolog.DebugLevel
	}
	log := utils.InitLogger(os.Stdout, "caravan", level)

	db := intconfig.ConnectDB(env.DSN())
	defer intconfig.CloseDB()

	if env.AutoMigrate {
		version, err := intdb.Migrate(db)
		if err != nil {
			log.Fatal().Err(err).Msg("no se pudieron aplicar las migraciones")
		}
		log.Info().Uint("version", version).Msg("esquema al día")
	}

	var locker *lock.Locker
	if rdb := intconfig.NewRedisClient(env); rdb != nil {
		defer rdb.Close()
		locker = lock.New(rdb)
	} else {
		log.Warn().Msg("redis no disponible; la conciliación masiva corre sin candado")
	}

	publisher, err := events.NewPublisher(events.Options{
		Driver:       env.EventsDriver,
		AMQPURL:      env.AMQPURL,
		KafkaBrokers: env.KafkaBrokers,
	})
	if err != nil {
		log.Warn().Err(err).Str("driver", env.EventsDriver).Msg("broker no disponible; los eventos solo se registran en el log")
		publisher = events.LogPublisher{}
	}
	defer publisher.Close()

	if env.AdminEmail != "" && env.AdminPassword != "" {
		auth := services.AuthService{DB: db, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := auth.EnsureAdmin(ctx, env.AdminName, env.AdminEmail, env.AdminPassword); err != nil {
			log.Error().Err(err).Msg("no se pudo preparar la cuenta de administrador")
		}
		cancel()
	}

	r := router.NewRouter(env, handlers.Deps{
		DB:        db,
		Pricing:   env.Pricing,
		Events:    publisher,
		Locker:    locker,
		JWTSecret: []byte(env.JWTSecret),
		JWTTTL:    env.JWTTTL,
		PublicURL: env.PublicURL,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", env.AppAddr).Msg("servidor escuchando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("no se pudo iniciar el servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("apagado forzado")
	}

	log.Info().Msg("servidor detenido")
}
