package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection. The audit log is
// the only table this service owns.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

const createRefundAuditSQL = `
CREATE TABLE IF NOT EXISTS refund_audit (
    id CHAR(36) PRIMARY KEY,
    order_id VARCHAR(64) NOT NULL,
    original_total DECIMAL(12,2) NOT NULL,
    seats_expected INT NOT NULL,
    seats_issued INT NOT NULL,
    refund_amount DECIMAL(12,2) NOT NULL,
    reason VARCHAR(512) NOT NULL,
    outcome VARCHAR(32) NOT NULL,
    recorded_at DATETIME NOT NULL,
    INDEX idx_refund_audit_order (order_id)
) CHARACTER SET utf8mb4;`

// Migrate creates the refund audit table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, createRefundAuditSQL)
	return err
}
