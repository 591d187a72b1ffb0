// cmd/reencolar puts parked e-mail jobs back on their queue.
// Uso: go run ./cmd/reencolar [-max 50]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pedidos/internal/config"
	"pedidos/internal/infra"
	"pedidos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	limite := flag.Int("max", 0, "máximo de trabajos a reencolar (0 = todos)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	n, err := worker.Reencolar(context.Background(), rdb, worker.QueueEmail, *limite)
	_ = rdb.Close()
	if err != nil {
		log.Error().Err(err).Int("reencolados", n).Msg("reencolado interrumpido")
		os.Exit(1)
	}
	log.Info().Int("reencolados", n).Str("queue", worker.QueueEmail).Msg("trabajos devueltos a la cola")
}
