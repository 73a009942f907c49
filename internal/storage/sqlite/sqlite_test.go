package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertUserKeepsRole(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.UpsertUser(ctx, 100, "ivan", "Иванов Иван", models.RoleManager)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.Role != models.RoleManager {
		t.Fatalf("role = %s, want manager", u.Role)
	}

	// A later contact must not demote the user.
	u, err = db.UpsertUser(ctx, 100, "ivan_new", "Иванов И.И.", models.RoleEmployee)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if u.Role != models.RoleManager {
		t.Fatalf("role after re-upsert = %s, want manager", u.Role)
	}
	if u.Username != "ivan_new" {
		t.Fatalf("username not refreshed: %s", u.Username)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetUserByID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteWorkshopDetachesEquipment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	wid, err := db.CreateWorkshop(ctx, "Участок №1", "")
	if err != nil {
		t.Fatalf("create workshop: %v", err)
	}
	eid, err := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", WorkshopID: &wid, IsActive: true})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	if err := db.DeleteWorkshop(ctx, wid); err != nil {
		t.Fatalf("delete workshop: %v", err)
	}

	e, err := db.GetEquipment(ctx, eid)
	if err != nil {
		t.Fatalf("equipment gone after workshop delete: %v", err)
	}
	if e.WorkshopID != nil {
		t.Fatalf("workshop_id = %d, want nil", *e.WorkshopID)
	}
}

func TestProductsForEquipment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e1, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", IsActive: true})
	e2, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Пресс В", IsActive: true})

	// p1 defaults to e1, p2 is linked to e2 only.
	p1, err := db.CreateProduct(ctx, &models.Product{Name: "Изделие А", DefaultEquipmentID: &e1, IsActive: true}, nil)
	if err != nil {
		t.Fatalf("create p1: %v", err)
	}
	p2, err := db.CreateProduct(ctx, &models.Product{Name: "Изделие Б", IsActive: true}, []int64{e2})
	if err != nil {
		t.Fatalf("create p2: %v", err)
	}

	list, err := db.ListProductsForEquipment(ctx, e1)
	if err != nil {
		t.Fatalf("list for e1: %v", err)
	}
	if len(list) != 1 || list[0].ID != p1 {
		t.Fatalf("e1 products = %+v, want only p1", list)
	}

	list, err = db.ListProductsForEquipment(ctx, e2)
	if err != nil {
		t.Fatalf("list for e2: %v", err)
	}
	if len(list) != 1 || list[0].ID != p2 {
		t.Fatalf("e2 products = %+v, want only p2", list)
	}
}

func TestListTasksFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mgr, _ := db.UpsertUser(ctx, 1, "mgr", "Менеджер", models.RoleManager)
	emp, _ := db.UpsertUser(ctx, 2, "emp", "Сотрудник", models.RoleEmployee)
	eq, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", IsActive: true})
	prod, _ := db.CreateProduct(ctx, &models.Product{Name: "Изделие А", DefaultEquipmentID: &eq, IsActive: true}, nil)

	day1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{day1, day2} {
		_, err := db.CreateTask(ctx, &models.Task{
			ManagerID: mgr.ID, EmployeeID: emp.ID, EquipmentID: eq, ProductID: prod,
			PlannedQuantity: 100, Shift: models.ShiftFirst, TaskDate: d,
			Status: models.StatusCreated, CreatedAt: d,
		})
		if err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	list, err := db.ListTasks(ctx, TaskFilter{EmployeeID: &emp.ID})
	if err != nil {
		t.Fatalf("list by employee: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d tasks, want 2", len(list))
	}
	// Newest first.
	if !list[0].TaskDate.After(list[1].TaskDate) {
		t.Fatalf("tasks not ordered by date desc: %v, %v", list[0].TaskDate, list[1].TaskDate)
	}
	if list[0].EquipmentName != "Станок А" || list[0].ProductName != "Изделие А" {
		t.Fatalf("joined names missing: %+v", list[0])
	}

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	list, err = db.ListTasks(ctx, TaskFilter{ManagerID: &mgr.ID, DateFrom: &from})
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(list) != 1 || !list[0].TaskDate.Equal(day2) {
		t.Fatalf("range filter got %d tasks", len(list))
	}
}

func TestListTasksDateFilterIgnoresZone(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mgr, _ := db.UpsertUser(ctx, 1, "mgr", "Менеджер", models.RoleManager)
	emp, _ := db.UpsertUser(ctx, 2, "emp", "Сотрудник", models.RoleEmployee)
	eq, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", IsActive: true})
	prod, _ := db.CreateProduct(ctx, &models.Product{Name: "Изделие А", DefaultEquipmentID: &eq, IsActive: true}, nil)

	// Task date carries a +03:00 offset, the filter bounds are UTC.
	// Only the calendar date may matter.
	msk := time.FixedZone("MSK", 3*3600)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, msk)
	_, err := db.CreateTask(ctx, &models.Task{
		ManagerID: mgr.ID, EmployeeID: emp.ID, EquipmentID: eq, ProductID: prod,
		PlannedQuantity: 100, Shift: models.ShiftFirst, TaskDate: day,
		Status: models.StatusCreated, CreatedAt: day,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	bound := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	list, err := db.ListTasks(ctx, TaskFilter{DateFrom: &bound, DateTo: &bound})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d tasks for their own day, want 1", len(list))
	}
	if got := list[0].TaskDate.Format("2006-01-02"); got != "2024-03-10" {
		t.Fatalf("task_date round-tripped to %s", got)
	}
}

func TestNotificationsReadCycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, _ := db.UpsertUser(ctx, 5, "emp", "", models.RoleEmployee)
	id, err := db.CreateNotification(ctx, u.ID, 1, "первое")
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if _, err := db.CreateNotification(ctx, u.ID, 2, "второе"); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	list, err := db.ListUnreadNotifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("unread = %d, want 2", len(list))
	}

	if err := db.MarkNotificationRead(ctx, id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	list, _ = db.ListUnreadNotifications(ctx, u.ID)
	if len(list) != 1 {
		t.Fatalf("unread after read = %d, want 1", len(list))
	}
}

func TestSeedSampleDataIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ws, _ := db.ListWorkshops(ctx)
	if len(ws) == 0 {
		t.Fatal("no workshops seeded")
	}
	n := len(ws)

	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	ws, _ = db.ListWorkshops(ctx)
	if len(ws) != n {
		t.Fatalf("second seed duplicated data: %d -> %d", n, len(ws))
	}
}
