package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"

	"smartmatch/availability"
	"smartmatch/config"
	"smartmatch/db"
	"smartmatch/lead"
	"smartmatch/listing"
	"smartmatch/location"
	"smartmatch/logging"
	"smartmatch/matching"
	"smartmatch/search"
	"smartmatch/session"
	"smartmatch/wizard"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.WithError(err).Fatal("load config")
	}
	logging.Init(config.AppName, cfg.LogLevel)
	log := logging.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        16,
		MaxConnIdleTime: time.Minute,
		MaxConnLifetime: 30 * time.Minute,
	})
	if err != nil {
		log.WithError(err).Fatal("bootstrap database pool")
	}
	defer pool.Close()

	flags := config.NewFlags(cfg, log)
	defer flags.Close()

	locations := location.Default()
	listings := listing.NewRepository(pool)

	avail := availability.NewFilter(listings, locations, log).WithPageSize(cfg.PageSize)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("parse REDIS_URL")
		}
		client := redis.NewClient(opts)
		defer client.Close()
		avail.WithCache(availability.NewRedisCache(client, cfg.AvailabilityCacheTTL))
		log.WithField("ttl", cfg.AvailabilityCacheTTL).Info("availability cache enabled")
	}

	recorder := session.NewRecorder(pool, session.NewRepository(pool), lead.NewRepository())
	searcher := search.NewService(listings, matching.NewEngine(locations), recorder, log).
		WithPageSize(cfg.PageSize)
	controller := wizard.NewController(avail, searcher, flags, log).
		WithPacing(cfg.SearchPacing).
		WithLocations(locations)

	server := &Server{
		availability: avail,
		search:       searcher,
		wizard:       controller,
		codec:        wizard.NewCodec(cfg.WizardStateSecret, 0),
		ping:         pool.Ping,
		log:          log,
	}

	allowed := []string{"*"}
	if cfg.AppURL != "" {
		allowed = []string{cfg.AppURL}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: cfg.AppURL != "",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           c.Handler(server.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.Infof("starting %s on :%s", config.AppName, cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}
