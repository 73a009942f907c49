package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

func (d *DB) CreateWorkshop(ctx context.Context, name, description string) (int64, error) {
	res, err := d.SQL.ExecContext(ctx, `
        INSERT INTO workshops (name, description, created_at) VALUES (?, ?, ?)`,
		name, nullStr(description), Now())
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (d *DB) GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM workshops WHERE id=?`, id)
	w := &models.Workshop{}
	var desc sql.NullString
	if err := row.Scan(&w.ID, &w.Name, &desc, &w.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	w.Description = desc.String
	return w, nil
}

func (d *DB) ListWorkshops(ctx context.Context) ([]*models.Workshop, error) {
	rows, err := d.SQL.QueryContext(ctx, `SELECT id, name, description, created_at FROM workshops ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Workshop
	for rows.Next() {
		w := &models.Workshop{}
		var desc sql.NullString
		if err := rows.Scan(&w.ID, &w.Name, &desc, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Description = desc.String
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWorkshop detaches the workshop's equipment instead of
// cascading: equipment survives with workshop_id set to NULL.
func (d *DB) DeleteWorkshop(ctx context.Context, id int64) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE equipment SET workshop_id=NULL WHERE workshop_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM workshops WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
