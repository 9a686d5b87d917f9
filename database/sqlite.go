package database

import (
	"database/sql"
	"strings"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// sqliteDriverName is go-sqlite3 with fold() registered on every connection.
// SQLite's built-in LOWER only folds ASCII letters.
const sqliteDriverName = "sqlite3_fold"

var registerSQLiteOnce sync.Once

func registerSQLiteDriver() {
	registerSQLiteOnce.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("fold", strings.ToLower, true)
			},
		})
	})
}

// LowerFunc names the SQL function that lowercases text with Unicode rules on db's dialect.
func LowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "fold"
	}
	return "LOWER"
}
