package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// 지원하는 드라이버
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		alias TEXT NOT NULL DEFAULT '',
		real_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		message_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(user_id),
		category_id INTEGER REFERENCES categories(category_id),
		question TEXT NOT NULL,
		date TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS processed_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT UNIQUE NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		processed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_events(processed_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		alias TEXT NOT NULL DEFAULT '',
		real_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		message_id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id),
		category_id BIGINT REFERENCES categories(category_id),
		question TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS processed_events (
		id BIGSERIAL PRIMARY KEY,
		event_id TEXT UNIQUE NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		processed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_events(processed_at)`,
}

// Open은 DB 연결을 열고 ping 후 스키마를 생성합니다.
// 스키마 생성은 반복 실행해도 안전합니다.
func Open(driver, dsn string) (*sqlx.DB, error) {
	var schema []string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("지원하지 않는 DB 드라이버: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("DB 열기 실패: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB ping 실패: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite는 동시 쓰기를 지원하지 않음
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("테이블 생성 실패: %w", err)
		}
	}

	return db, nil
}
