// users manages the accounts allowed to log in.
//
//	go run ./cmd/users -action add alice@example.com
//	go run ./cmd/users -action list
//	go run ./cmd/users -action reset alice@example.com
//	go run ./cmd/users -action remove alice@example.com
//
// reset rotates the user's secret, which logs out every open session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ErlanBelekov/companydesk/config"
	"github.com/ErlanBelekov/companydesk/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/companydesk/internal/usecase"
	"github.com/ErlanBelekov/companydesk/internal/validation"
)

func main() {
	action := flag.String("action", "list", "add | remove | list | reset")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := usecase.NewUserUsecase(postgres.NewUserRepository(pool), validation.New())

	if err := run(ctx, users, *action, flag.Arg(0)); err != nil {
		log.Fatalf("%s: %v", *action, err)
	}
}

func run(ctx context.Context, users *usecase.UserUsecase, action, email string) error {
	if action != "list" && email == "" {
		return errors.New("email argument required")
	}

	switch action {
	case "add":
		u, err := users.Add(ctx, email)
		if err != nil {
			return err
		}
		fmt.Printf("added %s (id %s)\n", u.Email, u.ID)
	case "remove":
		if err := users.Remove(ctx, email); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", email)
	case "reset":
		if err := users.ResetSecret(ctx, email); err != nil {
			return err
		}
		fmt.Printf("rotated secret for %s; existing sessions are revoked\n", email)
	case "list":
		list, err := users.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tID\tCREATED")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.Email, u.ID, u.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}
