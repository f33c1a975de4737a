// Package migrations embeds the postgres schema so the server binary can
// bring an empty database up to date.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
