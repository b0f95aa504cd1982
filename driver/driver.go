package driver

import (
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

func ConnectDB() *sql.DB {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		logrus.Fatal("DATABASE_DSN environment variable is not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		logrus.Fatalf("Error opening database: %v", err)
	}
	if err := db.Ping(); err != nil {
		logrus.Fatalf("Could not connect to database: %v", err)
	}
	return db
}
