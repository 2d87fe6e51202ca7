package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/billmal071/cosmere/internal/config"
	_ "modernc.org/sqlite"
)

var database *sql.DB

// local_storage is the only state cosmere persists: small key/value pairs
// such as the API bearer token.
const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Init initializes the database connection and schema
func Init() error {
	return Open(config.GetDBPath())
}

// Open opens (or creates) the database at path and applies the schema.
func Open(dbPath string) error {
	// Ensure directory exists
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	// Create schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return err
	}

	if database != nil {
		database.Close()
	}
	database = db
	return nil
}

// DB returns the database connection
func DB() *sql.DB {
	return database
}

// Close closes the database connection
func Close() error {
	if database != nil {
		err := database.Close()
		database = nil
		return err
	}
	return nil
}
