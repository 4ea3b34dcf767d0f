package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/application"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// main creates a demo account through the same service the API uses, so the
// record is hashed and validated exactly like a registered user.
func main() {
	email := flag.String("email", "paulforbes42@gmail.com", "email of the seeded user")
	password := flag.String("password", "L1m1t3dAcc355", "password of the seeded user")
	firstName := flag.String("first-name", "Paul", "first name of the seeded user")
	lastName := flag.String("last-name", "Forbes", "last name of the seeded user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel, "")

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// seeding ignores the registration flag
	svc := application.NewService(
		pginfra.NewUserRepository(pool),
		helpers.NewBcryptHasher(),
		helpers.NewJWTManager(cfg.JWTSecret),
		application.Settings{AllowUserRegistration: true},
		logger,
	)

	err = seed(ctx, svc, application.CreateUserInput{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
}

// seed creates the user and reports the outcome on w. An existing account is
// not an error. The password is never written out.
func seed(ctx context.Context, svc *application.Service, in application.CreateUserInput, w io.Writer) error {
	u, err := svc.CreateUser(ctx, in)
	if errors.Is(err, application.ErrEmailExists) {
		fmt.Fprintf(w, "user %s already exists, nothing to do\n", in.Email)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "seeded user: id=%s email=%s\n", u.ID, u.Email)
	return nil
}
