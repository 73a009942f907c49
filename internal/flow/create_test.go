package flow

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

type fixture struct {
	engine   *Engine
	db       *sqlite.DB
	manager  *models.User
	employee *models.User
	eq       int64
	prod     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx := context.Background()
	mgr, _ := db.UpsertUser(ctx, 1, "mgr", "Менеджер", models.RoleManager)
	emp, _ := db.UpsertUser(ctx, 2, "emp", "Сотрудник", models.RoleEmployee)
	eq, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", IsActive: true})
	prod, _ := db.CreateProduct(ctx, &models.Product{Name: "Изделие А", DefaultEquipmentID: &eq, IsActive: true}, nil)

	svc := tasks.NewService(db, log, time.UTC)
	return &fixture{engine: NewEngine(db, svc, time.UTC), db: db, manager: mgr, employee: emp, eq: eq, prod: prod}
}

func TestCreateFlowWalk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cf, prompt, err := f.engine.StartCreate(ctx, f.manager)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if prompt.Step != StepSelectEquipment || len(prompt.Choices) != 1 {
		t.Fatalf("bad first prompt: %+v", prompt)
	}

	steps := []struct {
		in   Input
		next CreateStep
	}{
		{SelectInput(f.eq), StepSelectProduct},
		{SelectInput(f.prod), StepEnterQuantity},
		{TextInput("100,5"), StepSelectEmployee},
		{SelectInput(f.employee.ID), StepSelectShift},
		{SelectInput(int64(models.ShiftFirst)), StepConfirm},
	}
	for _, s := range steps {
		prompt, task, err := f.engine.AdvanceCreate(ctx, cf, s.in)
		if err != nil {
			t.Fatalf("advance at %+v: %v", s.in, err)
		}
		if task != nil {
			t.Fatal("task created before confirmation")
		}
		if prompt.Step != s.next {
			t.Fatalf("step = %d, want %d", prompt.Step, s.next)
		}
	}

	prompt2, task, err := f.engine.AdvanceCreate(ctx, cf, ConfirmInput())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if prompt2 != nil || task == nil {
		t.Fatal("confirmation must yield the task")
	}
	if task.PlannedQuantity != 100.5 {
		t.Fatalf("planned = %g, want 100.5", task.PlannedQuantity)
	}
	if task.Status != models.StatusCreated {
		t.Fatalf("status = %s", task.Status)
	}
}

func TestCreateFlowQuantityRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cf, _, _ := f.engine.StartCreate(ctx, f.manager)
	f.engine.AdvanceCreate(ctx, cf, SelectInput(f.eq))
	f.engine.AdvanceCreate(ctx, cf, SelectInput(f.prod))

	for _, bad := range []string{"abc", "-5", "0"} {
		_, _, err := f.engine.AdvanceCreate(ctx, cf, TextInput(bad))
		if _, ok := IsRetry(err); !ok {
			t.Fatalf("input %q: err = %v, want retry", bad, err)
		}
		if cf.Step != StepEnterQuantity {
			t.Fatalf("retry moved the step to %d", cf.Step)
		}
	}

	// A valid value still goes through after failed attempts.
	prompt, _, err := f.engine.AdvanceCreate(ctx, cf, TextInput("10"))
	if err != nil {
		t.Fatalf("valid quantity: %v", err)
	}
	if prompt.Step != StepSelectEmployee {
		t.Fatalf("step = %d, want select employee", prompt.Step)
	}
}

func TestCreateFlowCancelAnywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cf, _, _ := f.engine.StartCreate(ctx, f.manager)
	f.engine.AdvanceCreate(ctx, cf, SelectInput(f.eq))

	_, _, err := f.engine.AdvanceCreate(ctx, cf, CancelInput())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	list, _ := f.db.ListTasks(ctx, sqlite.TaskFilter{ManagerID: &f.manager.ID})
	if len(list) != 0 {
		t.Fatalf("cancelled flow left %d tasks", len(list))
	}
}

func TestCreateFlowEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An equipment with no compatible products aborts the flow.
	bare, _ := f.db.CreateEquipment(ctx, &models.Equipment{Name: "Пресс В", IsActive: true})
	cf, _, _ := f.engine.StartCreate(ctx, f.manager)
	_, _, err := f.engine.AdvanceCreate(ctx, cf, SelectInput(bare))
	if !IsEmpty(err) {
		t.Fatalf("err = %v, want empty-set abort", err)
	}
}

func TestReportFlowWalk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.engine.svc.Create(ctx, tasks.CreateInput{
		ManagerID: f.manager.ID, EmployeeID: f.employee.ID,
		EquipmentID: f.eq, ProductID: f.prod,
		PlannedQuantity: 100, Shift: models.ShiftFirst,
		TaskDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// No RECEIVED tasks yet.
	if _, _, err := f.engine.StartReport(ctx, f.employee); !IsEmpty(err) {
		t.Fatalf("err = %v, want empty-set abort", err)
	}

	if _, err := f.engine.Acknowledge(ctx, f.employee, task.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	rf, prompt, err := f.engine.StartReport(ctx, f.employee)
	if err != nil {
		t.Fatalf("start report: %v", err)
	}
	if len(prompt.Choices) != 1 || prompt.Choices[0].ID != task.ID {
		t.Fatalf("bad choices: %+v", prompt.Choices)
	}

	prompt, _, err = f.engine.AdvanceReport(ctx, rf, SelectInput(task.ID))
	if err != nil {
		t.Fatalf("select task: %v", err)
	}
	if prompt.Step != StepEnterActual || prompt.Planned != 100 {
		t.Fatalf("bad prompt: %+v", prompt)
	}

	if _, _, err := f.engine.AdvanceReport(ctx, rf, TextInput("-3")); err == nil {
		t.Fatal("negative actual accepted")
	}

	_, done, err := f.engine.AdvanceReport(ctx, rf, TextInput("80"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if done.Status != models.StatusCompleted || done.ActualQuantity != 80 {
		t.Fatalf("task = %+v", done)
	}
}

func TestAcknowledgeForeignTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, _ := f.engine.svc.Create(ctx, tasks.CreateInput{
		ManagerID: f.manager.ID, EmployeeID: f.employee.ID,
		EquipmentID: f.eq, ProductID: f.prod,
		PlannedQuantity: 100, Shift: models.ShiftFirst,
		TaskDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	other, _ := f.db.UpsertUser(ctx, 3, "other", "", models.RoleEmployee)
	if _, err := f.engine.Acknowledge(ctx, other, task.ID); !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
