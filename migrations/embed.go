package migrations

import "embed"

// FS holds the schema migrations applied at start-up by database.RunMigrations.
//
//go:embed *.up.sql
var FS embed.FS
