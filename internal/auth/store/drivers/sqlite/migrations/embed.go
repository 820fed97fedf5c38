// Package migrations embeds the SQLite schema for the auth store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
