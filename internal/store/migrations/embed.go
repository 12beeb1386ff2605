package migrations

import "embed"

// FS holds the portal schema migrations.
//
//go:embed *.sql
var FS embed.FS
