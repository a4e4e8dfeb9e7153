// @title           Users API
// @version         1.0
// @description     CRUD service for users backed by PostgreSQL.
// @description     Passwords are stored as one-way hashes and never returned.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
// @schemes   http
//
// Package main содержит точку входа сервера users-api.
//
// Вся логика старта (конфиг, provision, миграции, graceful shutdown)
// находится в internal/server/cli и internal/server/app.
// HTTP API документируется с помощью OpenAPI (Swagger), см. swagger/docs.
package main

import (
	"github.com/IvanChernomyrdin/go-users-api/internal/server/cli"

	_ "github.com/IvanChernomyrdin/go-users-api/swagger/docs"
)

var (
	// buildVersion содержит версию приложения, передаваемую при сборке.
	buildVersion = "dev"
	// buildDate содержит дату сборки приложения.
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
