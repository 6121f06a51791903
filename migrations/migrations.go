// Package migrations embeds the SQL migrations of every supported dialect.
package migrations

import "embed"

//go:embed mysql/*.sql postgres/*.sql sqlite3/*.sql
var FS embed.FS
