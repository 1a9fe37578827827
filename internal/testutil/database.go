package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"wishlist/internal/config"
	"wishlist/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/wishlist_test"

// SetupTestDB connects to the MySQL test database named by TEST_DB_DSN
// (default root@localhost:3306/wishlist_test) and skips the test when it is
// not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := mysql.NewConnection(context.Background(), config.DatabaseConfig{
		DSN:          dsn,
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables creates the schema used by the repositories.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
}

// CleanupTestDB empties the tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM orders"); err != nil {
		t.Logf("failed to clean table orders: %v", err)
	}

	db.Close()
}
