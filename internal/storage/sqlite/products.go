package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

const productCols = `id, name, code, default_equipment_id, is_active, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var code sql.NullString
	var defEq sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &code, &defEq, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Code = code.String
	if defEq.Valid {
		p.DefaultEquipmentID = &defEq.Int64
	}
	return p, nil
}

// CreateProduct writes the product and its compatible-equipment links
// in one transaction so a half-linked product is never observable.
func (d *DB) CreateProduct(ctx context.Context, p *models.Product, equipmentIDs []int64) (int64, error) {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `
        INSERT INTO products (name, code, default_equipment_id, is_active, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		p.Name, nullStr(p.Code), nullID(p.DefaultEquipmentID), p.IsActive, Now())
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	for _, eqID := range equipmentIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_equipment (product_id, equipment_id) VALUES (?, ?)`, id, eqID); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

func (d *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func (d *DB) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	q := `SELECT ` + productCols + ` FROM products ORDER BY name`
	if activeOnly {
		q = `SELECT ` + productCols + ` FROM products WHERE is_active=1 ORDER BY name`
	}
	rows, err := d.SQL.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProductsForEquipment is the offered set of the SelectProduct
// step: active products linked to the equipment plus those whose
// default equipment it is.
func (d *DB) ListProductsForEquipment(ctx context.Context, equipmentID int64) ([]*models.Product, error) {
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT DISTINCT p.id, p.name, p.code, p.default_equipment_id, p.is_active, p.created_at
        FROM products p
        LEFT JOIN product_equipment pe ON pe.product_id = p.id
        WHERE p.is_active=1 AND (pe.equipment_id=? OR p.default_equipment_id=?)
        ORDER BY p.name`, equipmentID, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// EquipmentForProduct returns the product's linked equipment, falling
// back to its default equipment when no links exist.
func (d *DB) EquipmentForProduct(ctx context.Context, productID int64) ([]*models.Equipment, error) {
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT e.id, e.name, e.code, e.workshop_id, e.is_active, e.created_at
        FROM product_equipment pe
        JOIN equipment e ON e.id = pe.equipment_id
        WHERE pe.product_id=?
        ORDER BY e.name`, productID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}
	p, err := d.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.DefaultEquipmentID == nil {
		return nil, nil
	}
	e, err := d.GetEquipment(ctx, *p.DefaultEquipmentID)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return []*models.Equipment{e}, nil
}

// UpdateProduct replaces the product row and, when equipmentIDs is
// non-nil, its whole link set, atomically.
func (d *DB) UpdateProduct(ctx context.Context, p *models.Product, equipmentIDs []int64) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `
        UPDATE products SET name=?, code=?, default_equipment_id=?, is_active=? WHERE id=?`,
		p.Name, nullStr(p.Code), nullID(p.DefaultEquipmentID), p.IsActive, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if equipmentIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_equipment WHERE product_id=?`, p.ID); err != nil {
			return err
		}
		for _, eqID := range equipmentIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_equipment (product_id, equipment_id) VALUES (?, ?)`, p.ID, eqID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (d *DB) DeleteProduct(ctx context.Context, id int64) error {
	res, err := d.SQL.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
