package db

import (
	"database/sql"

	libdb "evcharge/libs/db"
)

// NewPostgres connects to Postgres using the shared library helper.
func NewPostgres(dsn string) (*sql.DB, error) {
	return libdb.NewPostgresDB(dsn)
}
