// Package migrations embeds the schema for every supported database.
package migrations

import "embed"

//go:embed mysql/*.sql postgres/*.sql
var FS embed.FS
