package sqlite

import (
	"context"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// SeedSampleData fills an empty database with a small set of
// workshops, equipment and products for development. It is a no-op
// when any workshop already exists.
func (d *DB) SeedSampleData(ctx context.Context) error {
	var count int
	if err := d.SQL.QueryRowContext(ctx, `SELECT count(*) FROM workshops`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ws1, err := d.CreateWorkshop(ctx, "Участок №1", "Основной участок производства")
	if err != nil {
		return err
	}
	ws2, err := d.CreateWorkshop(ctx, "Участок №2", "Вспомогательный участок")
	if err != nil {
		return err
	}

	eq := []*models.Equipment{
		{Name: "Станок А", Code: "EQ-001", WorkshopID: &ws1, IsActive: true},
		{Name: "Станок Б", Code: "EQ-002", WorkshopID: &ws1, IsActive: true},
		{Name: "Пресс В", Code: "EQ-003", WorkshopID: &ws2, IsActive: true},
	}
	var eqIDs []int64
	for _, e := range eq {
		id, err := d.CreateEquipment(ctx, e)
		if err != nil {
			return err
		}
		eqIDs = append(eqIDs, id)
	}

	products := []struct {
		name, code string
		eqID       int64
	}{
		{"Изделие А", "PRD-001", eqIDs[0]},
		{"Изделие Б", "PRD-002", eqIDs[1]},
		{"Изделие В", "PRD-003", eqIDs[2]},
	}
	for _, p := range products {
		eqID := p.eqID
		if _, err := d.CreateProduct(ctx, &models.Product{
			Name:               p.name,
			Code:               p.code,
			DefaultEquipmentID: &eqID,
			IsActive:           true,
		}, []int64{eqID}); err != nil {
			return err
		}
	}
	return nil
}
