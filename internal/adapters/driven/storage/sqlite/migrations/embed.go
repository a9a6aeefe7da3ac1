// Package migrations holds the versioned SQLite schema.
package migrations

import "embed"

// FS contains the .up.sql and .down.sql migration files.
//
//go:embed *.sql
var FS embed.FS
