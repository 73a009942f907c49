package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// TaskFilter narrows ListTasks. Nil fields are not applied. Date
// bounds are inclusive and compared by calendar date: only the
// year-month-day of DateFrom/DateTo matters, never their zone.
type TaskFilter struct {
	ManagerID  *int64
	EmployeeID *int64
	Status     *models.Status
	DateFrom   *time.Time
	DateTo     *time.Time
}

// task_date is a calendar date with no time component. It is stored
// and compared as a bare YYYY-MM-DD string so that bounds produced in
// different zones still match by date.
const dateOnly = "2006-01-02"

const taskCols = `id, manager_id, employee_id, equipment_id, product_id,
        planned_quantity, actual_quantity, shift, task_date, status,
        created_at, received_at, completed_at, notes`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var taskDate string
	var receivedAt, completedAt sql.NullTime
	var notes sql.NullString
	if err := row.Scan(&t.ID, &t.ManagerID, &t.EmployeeID, &t.EquipmentID, &t.ProductID,
		&t.PlannedQuantity, &t.ActualQuantity, &t.Shift, &taskDate, &t.Status,
		&t.CreatedAt, &receivedAt, &completedAt, &notes); err != nil {
		return nil, err
	}
	var err error
	if t.TaskDate, err = time.Parse(dateOnly, taskDate); err != nil {
		return nil, err
	}
	if receivedAt.Valid {
		t.ReceivedAt = &receivedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	t.Notes = notes.String
	return t, nil
}

func (d *DB) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	res, err := d.SQL.ExecContext(ctx, `
        INSERT INTO tasks (manager_id, employee_id, equipment_id, product_id,
            planned_quantity, actual_quantity, shift, task_date, status, created_at, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ManagerID, t.EmployeeID, t.EquipmentID, t.ProductID,
		t.PlannedQuantity, t.ActualQuantity, int(t.Shift), t.TaskDate.Format(dateOnly), t.Status, t.CreatedAt, nullStr(t.Notes))
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (d *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := d.SQL.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id=?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateTaskState writes the mutable lifecycle fields of a task. The
// transition rules live in the tasks service; this is a raw write.
func (d *DB) UpdateTaskState(ctx context.Context, t *models.Task) error {
	var receivedAt, completedAt any
	if t.ReceivedAt != nil {
		receivedAt = *t.ReceivedAt
	}
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}
	res, err := d.SQL.ExecContext(ctx, `
        UPDATE tasks SET status=?, actual_quantity=?, received_at=?, completed_at=? WHERE id=?`,
		t.Status, t.ActualQuantity, receivedAt, completedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasks returns tasks joined with display names, newest task date
// first. Callers downstream rely on this order and do not re-sort.
func (d *DB) ListTasks(ctx context.Context, f TaskFilter) ([]*models.TaskDetail, error) {
	var where []string
	var args []any
	if f.ManagerID != nil {
		where = append(where, "t.manager_id=?")
		args = append(args, *f.ManagerID)
	}
	if f.EmployeeID != nil {
		where = append(where, "t.employee_id=?")
		args = append(args, *f.EmployeeID)
	}
	if f.Status != nil {
		where = append(where, "t.status=?")
		args = append(args, *f.Status)
	}
	if f.DateFrom != nil {
		where = append(where, "t.task_date>=?")
		args = append(args, f.DateFrom.Format(dateOnly))
	}
	if f.DateTo != nil {
		where = append(where, "t.task_date<=?")
		args = append(args, f.DateTo.Format(dateOnly))
	}
	q := `
        SELECT t.id, t.manager_id, t.employee_id, t.equipment_id, t.product_id,
            t.planned_quantity, t.actual_quantity, t.shift, t.task_date, t.status,
            t.created_at, t.received_at, t.completed_at, t.notes,
            coalesce(m.full_name, m.username, ''),
            coalesce(emp.full_name, emp.username, ''),
            e.name, p.name
        FROM tasks t
        JOIN users m ON m.id = t.manager_id
        JOIN users emp ON emp.id = t.employee_id
        JOIN equipment e ON e.id = t.equipment_id
        JOIN products p ON p.id = t.product_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.task_date DESC, t.created_at DESC"

	rows, err := d.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.TaskDetail
	for rows.Next() {
		td := &models.TaskDetail{}
		var taskDate string
		var receivedAt, completedAt sql.NullTime
		var notes sql.NullString
		if err := rows.Scan(&td.ID, &td.ManagerID, &td.EmployeeID, &td.EquipmentID, &td.ProductID,
			&td.PlannedQuantity, &td.ActualQuantity, &td.Shift, &taskDate, &td.Status,
			&td.CreatedAt, &receivedAt, &completedAt, &notes,
			&td.ManagerName, &td.EmployeeName, &td.EquipmentName, &td.ProductName); err != nil {
			return nil, err
		}
		if td.TaskDate, err = time.Parse(dateOnly, taskDate); err != nil {
			return nil, err
		}
		if receivedAt.Valid {
			td.ReceivedAt = &receivedAt.Time
		}
		if completedAt.Valid {
			td.CompletedAt = &completedAt.Time
		}
		td.Notes = notes.String
		out = append(out, td)
	}
	return out, rows.Err()
}
