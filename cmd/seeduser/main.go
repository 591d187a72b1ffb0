// cmd/seeduser creates or updates a staff account.
// Uso: go run ./cmd/seeduser -username admin -password secreto [-nombre "Admin"] [-staff=false]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pedidos/internal/config"
	"pedidos/internal/infra"
	"pedidos/internal/repository"
	"pedidos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "nombre de usuario")
	password := flag.String("password", "", "contraseña (obligatoria)")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	staff := flag.Bool("staff", true, "acceso al panel de administración")
	flag.Parse()

	if *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	auth := service.NewAuthService(repository.NewUsuarioRepository(db), nil, cfg)
	u, err := auth.GuardarUsuario(context.Background(), *username, *nombre, *password, *staff)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo guardar el usuario")
	}
	log.Info().Uint("id", u.ID).Str("username", u.Username).Bool("staff", u.EsStaff).Msg("usuario creado/actualizado")
}
