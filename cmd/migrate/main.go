package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/planmailer/internal/db/migrations"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "planmailer.db"
	}

	db, err := sql.Open("sqlite", dbURL)
	if err != nil {
		slog.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		slog.Error("failed to read embedded migrations", "err", err)
		os.Exit(1)
	}

	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		slog.Error("failed to create migration driver", "err", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		slog.Error("failed to create migrator", "err", err)
		os.Exit(1)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("no migrations to apply")
	case err != nil:
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	default:
		fmt.Println("migrations complete")
	}
}
