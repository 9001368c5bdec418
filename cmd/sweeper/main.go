package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	kafkaad "stayhaven/internal/adapters/kafka"
	"stayhaven/internal/adapters/observability"
	redisad "stayhaven/internal/adapters/redis"
	"stayhaven/internal/app"
	"stayhaven/internal/domain"
	"stayhaven/internal/shared"
	mysqlrepo "stayhaven/internal/storage/mysql"
)

// The sweeper moves confirmed reservations whose checkout date has
// passed into the completed state. Run it from cron; one pass per run.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.Workers).
		Int("limit", cfg.SweepLimit).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	var events domain.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkaad.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		events = pub
	}
	sweep := app.NewSweepService(store, cache, events)

	due, err := sweep.Due(ctx, time.Now().UTC(), cfg.SweepLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("listing due reservations failed")
	}
	log.Info().Int("due", len(due)).Msg("found reservations past checkout")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var completed atomic.Int64

	for _, r := range due {
		r := r

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(res domain.Reservation) {
			defer wg.Done()
			defer sem.Release(1)

			if err := sweep.CompleteOne(ctx, res); err != nil {
				log.Warn().Str("id", res.ID).Err(err).Msg("complete failed")
				return
			}
			completed.Add(1)
			log.Info().Str("id", res.ID).Str("user", res.UserID).Msg("completed")
		}(r)
	}

	wg.Wait()
	log.Info().Int64("completed", completed.Load()).Msg("sweep finished")
}
