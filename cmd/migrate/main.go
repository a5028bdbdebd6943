// migrate aplica las migraciones SQL embebidas sobre la base configurada.
//
// Uso: go run ./cmd/migrate [-list]
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jhoicas/caminvoice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/caminvoice-api/pkg/config"
	"github.com/jhoicas/caminvoice-api/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "solo listar las migraciones embebidas")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	}).Component("migrate")

	if *list {
		names, err := postgres.MigrationNames()
		if err != nil {
			log.Fatal().Err(err).Msg("listar migraciones")
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.RunMigrations(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("migraciones")
	}
	log.Info().Int("applied", applied).Msg("migraciones aplicadas")
}
