// seed inserts the global catalog and a sample region for local testing. Run after cmd/migrate.
// Idempotent: skips inserts if the sample region already exists. With JWT_PRIVATE_KEY set it also
// prints an access token for the sample admin.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/config"
	"f3-catalog/backend/internal/db"
	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/security"
)

const (
	sampleRegion = "F3 Sample Region"
	sampleAO     = "The Forge"
)

type eventTypeSeed struct{ name, acronym, category string }

var globalEventTypes = []eventTypeSeed{
	{"Bootcamp", "BC", "first_f"},
	{"Ruck", "RK", "first_f"},
	{"Run", "RU", "first_f"},
	{"Swim", "SW", "first_f"},
	{"Coffeeteria", "CT", "second_f"},
	{"Gear", "GR", "second_f"},
	{"QSource", "QS", "third_f"},
}

var globalEventTags = []struct{ name, color string }{
	{"Open", "#2e7d32"},
	{"VQ", "#f9a825"},
	{"Convergence", "#1565c0"},
	{"Manniversary", "#6a1b9a"},
}

// orgType "" is the wildcard scope.
var globalPositions = []struct{ name, orgType string }{
	{"Nantan", "region"},
	{"Weasel Shaker", "region"},
	{"Comz", "region"},
	{"Site Q", "ao"},
	{"Q Lineup Q", ""},
}

func main() {
	adminID := flag.Int64("admin", 1, "user id made admin of the sample region")
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

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", "error", err)
	}
	defer conn.Close()

	ctx := context.Background()
	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orgs WHERE org_type = 'region' AND name = $1)`, sampleRegion,
	).Scan(&exists); err != nil {
		log.Fatal("seed check", "error", err)
	}
	if exists {
		log.Info("seed already applied, skipping", "region", sampleRegion)
	} else {
		regionID, err := seed(ctx, conn, *adminID)
		if err != nil {
			log.Fatal("seed", "error", err)
		}
		log.Info("seed completed", "region_id", regionID, "admin", *adminID)
	}

	if cfg.JWTPrivateKey == "" {
		return
	}
	signer, pub, err := security.LoadKeys(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatal("jwt keys", "error", err)
	}
	token, expiresAt, err := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()).Issue(*adminID)
	if err != nil {
		log.Fatal("issue token", "error", err)
	}
	fmt.Printf("Admin token (user %d, expires %s):\n%s\n", *adminID, expiresAt.Format("2006-01-02 15:04"), token)
}

// seed inserts everything in one transaction and returns the sample region id.
func seed(ctx context.Context, conn *sql.DB, adminID int64) (regionID int64, err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, et := range globalEventTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_types (org_id, name, acronym, category) VALUES (NULL, $1, $2, $3)`,
			et.name, et.acronym, et.category,
		); err != nil {
			return 0, errors.Wrapf(err, "insert event type %s", et.name)
		}
	}
	for _, tag := range globalEventTags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_tags (org_id, name, color) VALUES (NULL, $1, $2)`, tag.name, tag.color,
		); err != nil {
			return 0, errors.Wrapf(err, "insert event tag %s", tag.name)
		}
	}
	for _, p := range globalPositions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO positions (org_id, name, org_type) VALUES (NULL, $1, NULLIF($2, ''))`, p.name, p.orgType,
		); err != nil {
			return 0, errors.Wrapf(err, "insert position %s", p.name)
		}
	}

	var roleID int64
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`,
		repository.AdminRoleName,
	).Scan(&roleID); err != nil {
		return 0, errors.Wrap(err, "upsert admin role")
	}

	if err := tx.QueryRowContext(ctx,
		`INSERT INTO orgs (org_type, name, description) VALUES ('region', $1, 'Sample region for local testing') RETURNING id`,
		sampleRegion,
	).Scan(&regionID); err != nil {
		return 0, errors.Wrap(err, "insert region")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orgs (parent_id, org_type, name) VALUES ($1, 'ao', $2)`, regionID, sampleAO,
	); err != nil {
		return 0, errors.Wrap(err, "insert ao")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO roles_x_users_x_org (role_id, user_id, org_id) VALUES ($1, $2, $3)`, roleID, adminID, regionID,
	); err != nil {
		return 0, errors.Wrap(err, "assign region admin")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return regionID, nil
}
