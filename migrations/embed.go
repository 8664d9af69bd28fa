// Package migrations embeds the SQL schema so binaries and integration tests
// can migrate without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
