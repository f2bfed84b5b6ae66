// Command create-user creates a user with a bcrypt-hashed password and an
// empty profile ready for onboarding.
// Usage: go run ./cmd/create-user [-premium]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/CODE-DK/nutritionist/internal/config"
)

type newUser struct {
	ID        string
	Email     string
	Name      string
	Password  string
	AuthToken string
	Tier      string
}

func main() {
	premium := flag.Bool("premium", false, "create the user on the premium tier")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label + ": ")
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	u := newUser{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(prompt("Email")),
		Name:      prompt("Name"),
		Password:  prompt("Password"),
		AuthToken: uuid.NewString(),
		Tier:      "free",
	}
	if *premium {
		u.Tier = "premium"
	}
	if u.Email == "" || u.Password == "" {
		log.Fatal().Msg("email and password are required")
	}

	if err := createUser(ctx, conn, u); err != nil {
		log.Fatal().Err(err).Msg("error creating user")
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %s\n", u.ID)
	fmt.Printf("  Email:      %s\n", u.Email)
	fmt.Printf("  Tier:       %s\n", u.Tier)
	fmt.Printf("  Auth Token: %s\n", u.AuthToken)
}

// createUser inserts the user and its empty profile in one transaction.
func createUser(ctx context.Context, conn *pgx.Conn, u newUser) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var name *string
	if u.Name != "" {
		name = &u.Name
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, name, password, auth_token, subscription_tier)
			 VALUES (@id, @email, @name, @password, @authToken, @tier)`,
			pgx.NamedArgs{
				"id": u.ID, "email": u.Email, "name": name,
				"password": string(hash), "authToken": u.AuthToken, "tier": u.Tier,
			}); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO user_profiles (user_id) VALUES ($1)", u.ID); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
}
