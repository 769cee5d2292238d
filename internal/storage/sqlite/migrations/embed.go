package migrations

import "embed"

// FS contains embedded SQLite migrations for planning storage.
//
//go:embed *.sql
var FS embed.FS
