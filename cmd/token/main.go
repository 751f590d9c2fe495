// Command token mints a bearer token for a reader, for scripting against the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"litreview/internal/config"
	"litreview/internal/database"
	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/repository"
	"litreview/internal/seed"
	"litreview/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	username := flag.String("user", "", "Username to issue the token for")
	create := flag.Bool("create", false, "Create the user (with the seed password) when missing")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *username == "" {
		return errors.New("usage: go run ./cmd/token -user <name> [-create] [-ttl 24h]")
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", *ttl)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	user, err := users.GetByUsername(ctx, *username)
	switch {
	case models.HasCode(err, models.CodeNotFound) && *create:
		user, err = createUser(ctx, users, *username)
		if err != nil {
			return err
		}
		log.Printf("created user %s (id %d) with password %q", user.Username, user.ID, seed.DefaultPassword)
	case err != nil:
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := middleware.IssueToken(cfg, user.ID, *ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, token)
	return nil
}

func createUser(ctx context.Context, users repository.UserRepository, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, Password: string(hash)}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
