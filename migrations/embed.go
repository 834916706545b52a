// Package migrations embeds the postgres schema for integration tests and tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
