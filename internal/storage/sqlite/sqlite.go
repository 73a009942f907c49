package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	SQL *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)"
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(1)
	if err := migrate(context.Background(), s); err != nil {
		return nil, err
	}
	return &DB{SQL: s}, nil
}

func (d *DB) Close() error { return d.SQL.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE NOT NULL,
            username TEXT,
            full_name TEXT,
            role TEXT NOT NULL DEFAULT 'employee',
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS workshops (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            description TEXT,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS equipment (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            code TEXT UNIQUE,
            workshop_id INTEGER REFERENCES workshops(id) ON DELETE SET NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            code TEXT UNIQUE,
            default_equipment_id INTEGER REFERENCES equipment(id) ON DELETE SET NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS product_equipment (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            equipment_id INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_product_equipment_unique ON product_equipment(product_id, equipment_id);`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            manager_id INTEGER NOT NULL REFERENCES users(id),
            employee_id INTEGER NOT NULL REFERENCES users(id),
            equipment_id INTEGER NOT NULL REFERENCES equipment(id),
            product_id INTEGER NOT NULL REFERENCES products(id),
            planned_quantity REAL NOT NULL,
            actual_quantity REAL NOT NULL DEFAULT 0,
            shift INTEGER NOT NULL,
            task_date DATE NOT NULL,
            status TEXT NOT NULL DEFAULT 'created',
            created_at DATETIME NOT NULL,
            received_at DATETIME,
            completed_at DATETIME,
            notes TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_manager ON tasks(manager_id, task_date);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_employee ON tasks(employee_id, status);`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
            message TEXT NOT NULL,
            is_read INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        );`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Now stamps storage timestamps in UTC. Calendar-date fields are the
// caller's business; everything the storage stamps itself stays in
// one fixed zone regardless of the process TZ.
func Now() time.Time {
	return time.Now().UTC()
}
