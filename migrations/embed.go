// Package migrations хранит SQL-миграции схемы и вшивает их в бинарник.
package migrations

import "embed"

// FS — миграции golang-migrate, каталог postgres/.
//
//go:embed postgres/*.sql
var FS embed.FS

// Dir — каталог внутри FS для драйвера postgres.
const Dir = "postgres"
