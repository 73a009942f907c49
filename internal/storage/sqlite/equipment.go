package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

const equipmentCols = `id, name, code, workshop_id, is_active, created_at`

func scanEquipment(row interface{ Scan(...any) error }) (*models.Equipment, error) {
	e := &models.Equipment{}
	var code sql.NullString
	var workshopID sql.NullInt64
	if err := row.Scan(&e.ID, &e.Name, &code, &workshopID, &e.IsActive, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Code = code.String
	if workshopID.Valid {
		e.WorkshopID = &workshopID.Int64
	}
	return e, nil
}

func (d *DB) CreateEquipment(ctx context.Context, e *models.Equipment) (int64, error) {
	res, err := d.SQL.ExecContext(ctx, `
        INSERT INTO equipment (name, code, workshop_id, is_active, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		e.Name, nullStr(e.Code), nullID(e.WorkshopID), e.IsActive, Now())
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (d *DB) GetEquipment(ctx context.Context, id int64) (*models.Equipment, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT `+equipmentCols+` FROM equipment WHERE id=?`, id)
	e, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

// ListActiveEquipment is the offered set of the SelectEquipment step,
// optionally narrowed to one workshop.
func (d *DB) ListActiveEquipment(ctx context.Context, workshopID *int64) ([]*models.Equipment, error) {
	q := `SELECT ` + equipmentCols + ` FROM equipment WHERE is_active=1 ORDER BY name`
	args := []any{}
	if workshopID != nil {
		q = `SELECT ` + equipmentCols + ` FROM equipment WHERE is_active=1 AND workshop_id=? ORDER BY name`
		args = append(args, *workshopID)
	}
	rows, err := d.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) ListEquipment(ctx context.Context) ([]*models.Equipment, error) {
	rows, err := d.SQL.QueryContext(ctx, `SELECT `+equipmentCols+` FROM equipment ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEquipment(ctx context.Context, e *models.Equipment) error {
	res, err := d.SQL.ExecContext(ctx, `
        UPDATE equipment SET name=?, code=?, workshop_id=?, is_active=? WHERE id=?`,
		e.Name, nullStr(e.Code), nullID(e.WorkshopID), e.IsActive, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteEquipment(ctx context.Context, id int64) error {
	res, err := d.SQL.ExecContext(ctx, `DELETE FROM equipment WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
