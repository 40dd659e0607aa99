package database

import (
	"github.com/Lumos-Labs-HQ/flashseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/flashseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/flashseed/internal/database/sqlite"
)

// NewAdapter returns the adapter for provider. schemas limits the schemas
// enumerated by providers that support more than one.
func NewAdapter(provider string, schemas []string) DatabaseAdapter {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(schemas)
	case "mysql":
		return mysql.New()
	case "sqlite", "sqlite3":
		return sqlite.New()
	default:
		return postgres.New(schemas)
	}
}
