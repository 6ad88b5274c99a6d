// Package gormstore implements the domain repositories on gorm. It runs on
// MySQL, Postgres and SQLite; SQLite ignores row locks, which is fine for the
// single-connection tests that use it.
package gormstore

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

// notFound swaps gorm's sentinel for the aggregate's own.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
