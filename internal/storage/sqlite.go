package storage

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitSQLite opens a SQLite database with foreign keys enforced.
// A single connection is used so that writers never hit SQLITE_BUSY.
func InitSQLite(path, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// InitMemorySQLite opens a private in-memory database named name.
func InitMemorySQLite(name string) (*gorm.DB, error) {
	return InitSQLite("file:"+name+"?mode=memory&cache=shared", "silent")
}

// SQLiteDSN appends the foreign key pragma to path.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
