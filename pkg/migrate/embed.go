package migrate

import "embed"

// EmbeddedDir is the directory name inside Migrations.
const EmbeddedDir = "migrations"

// Migrations ships the SQL files inside every binary so deploys need no source checkout.
//
//go:embed migrations/*.sql
var Migrations embed.FS
