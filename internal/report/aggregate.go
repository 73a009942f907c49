package report

import (
	"time"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Row is one report line. Column order in every renderer follows the
// field order here.
type Row struct {
	ID        int64
	Date      time.Time
	Shift     string
	Employee  string
	Equipment string
	Product   string
	Planned   float64
	Actual    float64
	Delta     float64
	Status    string
}

// BuildRows turns tasks into report rows, one per task, computing
// delta = actual - planned. Delivery order is preserved: the caller
// already ordered by date descending and no re-sort happens here.
func BuildRows(tasks []*models.TaskDetail) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{
			ID:        t.ID,
			Date:      t.TaskDate,
			Shift:     t.Shift.Short(),
			Employee:  t.EmployeeName,
			Equipment: t.EquipmentName,
			Product:   t.ProductName,
			Planned:   t.PlannedQuantity,
			Actual:    t.ActualQuantity,
			Delta:     t.ActualQuantity - t.PlannedQuantity,
			Status:    string(t.Status),
		})
	}
	return rows
}

var columns = []string{"ID", "Дата", "Смена", "Сотрудник", "Оборудование", "Продукция", "План", "Факт", "Дельта", "Статус"}
