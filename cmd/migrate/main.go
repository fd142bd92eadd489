// migrate applies the embedded schema migrations: go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"f3-catalog/backend/internal/config"
	"f3-catalog/backend/internal/db/migrate"
	"f3-catalog/backend/internal/platform/logger"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LoggerMode())
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		log.Fatal("migrate", "error", err)
	}
	if err := migrate.Run(cfg.DatabaseURL, dir); err != nil {
		log.Fatal("migrate", "direction", dir, "error", err)
	}
	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("migrate version", "error", err)
	}
	log.Info("migrations applied", "direction", dir, "version", version, "dirty", dirty)
}
