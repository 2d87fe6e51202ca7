package db

import (
	"database/sql"
	"errors"
)

// ErrNotInitialized is returned when local storage is used before Init.
var ErrNotInitialized = errors.New("local storage not initialized")

// GetItem returns the value stored under key. A missing key yields ("", false, nil).
func GetItem(key string) (string, bool, error) {
	if database == nil {
		return "", false, ErrNotInitialized
	}
	var value string
	err := database.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func SetItem(key, value string) error {
	if database == nil {
		return ErrNotInitialized
	}
	_, err := database.Exec(`
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// RemoveItem deletes key. Removing a missing key is not an error.
func RemoveItem(key string) error {
	if database == nil {
		return ErrNotInitialized
	}
	_, err := database.Exec(`DELETE FROM local_storage WHERE key = ?`, key)
	return err
}

// Keys lists stored keys in name order.
func Keys() ([]string, error) {
	if database == nil {
		return nil, ErrNotInitialized
	}
	rows, err := database.Query(`SELECT key FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
