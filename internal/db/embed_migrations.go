package db

import "embed"

// MigrationFS embeds the schema migrations (orgs, catalog, events, audit logs) applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
