package db

import (
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the history database. A DSN containing "@tcp(" is treated
// as MySQL; anything else (including empty) is a sqlite path, which keeps
// local development dependency-free.
func Connect(dsn string) *gorm.DB {
	var (
		gdb *gorm.DB
		err error
	)
	switch {
	case strings.Contains(dsn, "@tcp("):
		gdb, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case dsn == "":
		gdb, err = gorm.Open(sqlite.Open("studyflow.db"), &gorm.Config{})
	default:
		gdb, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}
