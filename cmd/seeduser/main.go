// seeduser creates the bootstrap manager and admin accounts. Unlike normal
// registrations these are created active, since there is nobody to approve
// the first manager.
//
// Usage: go run ./cmd/seeduser <role> <username> <email> <password>
package main

import (
	"context"
	"fmt"
	"os"

	"stockroom/internal/config"
	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, "usage: seeduser <manager|admin> <username> <email> <password>")
		os.Exit(1)
	}
	role := model.Role(os.Args[1])
	if role != model.RoleManager && role != model.RoleAdmin {
		fmt.Fprintln(os.Stderr, "role must be manager or admin")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[4]), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	users := repository.NewUserRepository(db)
	user := &model.User{
		Username:     os.Args[2],
		Email:        os.Args[3],
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := users.Create(context.Background(), user); err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	log.Info().Str("id", user.ID.String()).Str("role", string(role)).Msg("user created")
}
