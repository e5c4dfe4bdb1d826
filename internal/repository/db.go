package repository

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// normalizeDSN forces the connection options the repositories depend on:
// parseTime so DATE columns scan into time.Time, and clientFoundRows so
// UPDATE reports matched rows rather than changed rows. Without
// clientFoundRows, an update that writes values identical to the stored row
// reports zero affected rows and would be mistaken for a missing row.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// NewDB creates a bounded MySQL connection pool with the given DSN. Requests
// beyond the open-connection limit queue for a connection rather than failing.
func NewDB(dsn string) (*sql.DB, error) {
	dsn, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
