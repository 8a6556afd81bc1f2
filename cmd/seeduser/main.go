// Command seeduser creates a user, or resets the password of an existing one.
// Usage: go run ./cmd/seeduser -username alice -password pw123456
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"repairtrack/internal/config"
	"repairtrack/internal/infra"
	"repairtrack/internal/model"
	"repairtrack/internal/repository"
	"repairtrack/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "admin", "username to create or reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(*password) < 6 {
		log.Fatal().Msg("-password must be at least 6 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	hash, err := service.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewUserRepository(db)
	user, err := repo.FindByUsername(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{Username: *username, PasswordHash: hash}
		err = repo.Create(ctx, user)
	case err == nil:
		user.PasswordHash = hash
		err = repo.Update(ctx, user)
	}
	if err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("failed to save user")
	}
	log.Info().Str("username", user.Username).Str("id", user.ID.String()).Msg("user created/updated")
}
