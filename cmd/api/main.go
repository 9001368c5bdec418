package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	server "stayhaven/internal/adapters/http_server"
	kafkaad "stayhaven/internal/adapters/kafka"
	"stayhaven/internal/adapters/observability"
	redisad "stayhaven/internal/adapters/redis"
	"stayhaven/internal/app"
	"stayhaven/internal/catalog"
	"stayhaven/internal/domain"
	"stayhaven/internal/shared"
	mysqlrepo "stayhaven/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// static hotel catalog, loaded once
	cat, err := catalog.New()
	if err != nil {
		log.Fatal().Err(err).Msg("catalog load failed")
	}
	log.Info().Int("hotels", len(cat.List())).Msg("catalog loaded")

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	var events domain.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkaad.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		events = pub
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("event publishing enabled")
	}
	bookings := app.NewBookingService(store, cat, cache, events, cfg.CacheTTL)

	// http
	srv := server.New(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Bookings:  bookings,
		Catalog:   cat,
		JWTSecret: []byte(cfg.JWTSecret),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
