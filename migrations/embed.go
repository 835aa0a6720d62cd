// Package migrations embeds the goose SQL migrations so the server and the
// integration tests can apply them without a path on disk.
package migrations

import "embed"

// FS holds every *.sql migration, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
