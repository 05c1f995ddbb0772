// Package schemas embeds the card store migrations.
package schemas

import "embed"

// Migrations holds the SQL files applied by the card store, in name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
