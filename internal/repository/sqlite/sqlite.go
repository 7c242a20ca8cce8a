package sqlite

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens an SQLite database at the given path. For an in-memory DB
// (e.g. testing), "file::memory:?cache=shared" can be used instead of a
// filename.
func New(dbname string) (*gorm.DB, error) {
	dbCon, err := gorm.Open(sqlite.Open(dbname), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return dbCon, nil
}
