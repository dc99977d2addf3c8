// Package migrations embeds the goose SQL migrations. Each supported
// dialect has its own directory because the DDL differs (auto-increment
// syntax, enum support, timestamp types).
package migrations

import "embed"

//go:embed sqlite/*.sql mysql/*.sql postgres/*.sql
var Migrations embed.FS
