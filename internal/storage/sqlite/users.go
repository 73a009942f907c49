package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

const userCols = `id, telegram_id, username, full_name, role, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var username, fullName sql.NullString
	if err := row.Scan(&u.ID, &u.TelegramID, &username, &fullName, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Username = username.String
	u.FullName = fullName.String
	return u, nil
}

// UpsertUser registers an unknown telegram id with the given role and
// refreshes the username/full name for a known one. The stored role of
// an existing user is never touched here; role changes go through
// UpdateUser.
func (d *DB) UpsertUser(ctx context.Context, telegramID int64, username, fullName string, role models.Role) (*models.User, error) {
	now := Now()
	_, err := d.SQL.ExecContext(ctx, `
        INSERT INTO users (telegram_id, username, full_name, role, is_active, created_at)
        VALUES (?, ?, ?, ?, 1, ?)
        ON CONFLICT(telegram_id) DO UPDATE SET username=excluded.username, full_name=excluded.full_name
    `, telegramID, nullStr(username), nullStr(fullName), role, now)
	if err != nil {
		return nil, err
	}
	return d.GetUserByTelegramID(ctx, telegramID)
}

func (d *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE telegram_id=?`, telegramID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

func (d *DB) ListUsers(ctx context.Context, role models.Role) ([]*models.User, error) {
	q := `SELECT ` + userCols + ` FROM users ORDER BY full_name, username`
	args := []any{}
	if role != "" {
		q = `SELECT ` + userCols + ` FROM users WHERE role=? ORDER BY full_name, username`
		args = append(args, role)
	}
	rows, err := d.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListActiveEmployees is the offered set of the SelectEmployee step.
func (d *DB) ListActiveEmployees(ctx context.Context) ([]*models.User, error) {
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT `+userCols+` FROM users
        WHERE role='employee' AND is_active=1
        ORDER BY full_name, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := d.SQL.ExecContext(ctx, `
        UPDATE users SET full_name=?, role=?, is_active=? WHERE id=?`,
		nullStr(u.FullName), u.Role, u.IsActive, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
