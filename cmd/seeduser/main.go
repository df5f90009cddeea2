// seeduser creates or resets the bootstrap admin user.
// Usage: SEED_EMAIL=... SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"

	"github.com/CuasDev/fel/internal/config"
	"github.com/CuasDev/fel/internal/infra"
	"github.com/CuasDev/fel/internal/model"
	"github.com/CuasDev/fel/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	email := envOr("SEED_EMAIL", "admin@fel.local")
	password := envOr("SEED_PASSWORD", "admin123")
	name := envOr("SEED_NAME", "Administrador")

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO users (id, name, email, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    active = true,
		    updated_at = NOW()
	`, uuid.New(), name, email, hash, model.RoleAdmin)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	log.Info().Str("email", email).Msg("admin user created or updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
