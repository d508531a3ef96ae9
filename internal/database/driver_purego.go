//go:build !cgo_sqlite

package database

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteDriverName = "sqlite"
