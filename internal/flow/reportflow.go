package flow

import (
	"context"
	"fmt"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

type ReportStep int

const (
	StepSelectTask ReportStep = iota
	StepEnterActual
)

// ReportFlow is the in-progress completion report of one employee.
type ReportFlow struct {
	EmployeeID int64
	Step       ReportStep
	TaskID     int64
	Planned    float64
}

type ReportPrompt struct {
	Step    ReportStep
	Choices []Choice
	Planned float64
}

// StartReport opens the dialogue over the employee's acknowledged
// tasks. Only RECEIVED tasks can be reported on: an unacknowledged
// task is reported through acknowledgement first.
func (e *Engine) StartReport(ctx context.Context, employee *models.User) (*ReportFlow, *ReportPrompt, error) {
	st := models.StatusReceived
	list, err := e.db.ListTasks(ctx, sqlite.TaskFilter{EmployeeID: &employee.ID, Status: &st})
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		return nil, nil, empty("У вас нет заданий в работе. Сначала подтвердите получение задания.")
	}
	choices := make([]Choice, 0, len(list))
	for _, t := range list {
		choices = append(choices, Choice{ID: t.ID, Label: fmt.Sprintf("Задание №%d - План: %g", t.ID, t.PlannedQuantity)})
	}
	f := &ReportFlow{EmployeeID: employee.ID, Step: StepSelectTask}
	return f, &ReportPrompt{Step: StepSelectTask, Choices: choices}, nil
}

// AdvanceReport applies one input. The terminal outcome is the
// completed task.
func (e *Engine) AdvanceReport(ctx context.Context, f *ReportFlow, in Input) (*ReportPrompt, *models.Task, error) {
	if in.Cancel {
		return nil, nil, ErrCancelled
	}

	switch f.Step {
	case StepSelectTask:
		if !in.HasSelect {
			return nil, nil, retry("Выберите задание кнопкой.")
		}
		t, err := e.db.GetTask(ctx, in.Select)
		if err != nil {
			return nil, nil, err
		}
		if t.EmployeeID != f.EmployeeID || t.Status != models.StatusReceived {
			return nil, nil, retry("Это задание больше недоступно для отчёта.")
		}
		f.TaskID = t.ID
		f.Planned = t.PlannedQuantity
		f.Step = StepEnterActual
		return &ReportPrompt{Step: StepEnterActual, Planned: t.PlannedQuantity}, nil, nil

	case StepEnterActual:
		if !in.HasText {
			return nil, nil, retry("Введите фактическое количество текстом.")
		}
		actual, err := ParseQuantity(in.Text)
		if err != nil {
			return nil, nil, retry("Введите корректное число.")
		}
		if actual < 0 {
			return nil, nil, retry("Количество не может быть отрицательным.")
		}
		t, err := e.svc.ReportActual(ctx, f.TaskID, actual)
		if err != nil {
			return nil, nil, err
		}
		return nil, t, nil
	}
	return nil, nil, retry("Неизвестный шаг диалога.")
}

// AckChoices lists the employee's unacknowledged tasks as buttons.
func (e *Engine) AckChoices(ctx context.Context, employee *models.User) ([]Choice, error) {
	st := models.StatusCreated
	list, err := e.db.ListTasks(ctx, sqlite.TaskFilter{EmployeeID: &employee.ID, Status: &st})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, empty("У вас нет новых заданий.")
	}
	choices := make([]Choice, 0, len(list))
	for _, t := range list {
		choices = append(choices, Choice{ID: t.ID, Label: fmt.Sprintf("Задание №%d - %s, %g шт.", t.ID, t.ProductName, t.PlannedQuantity)})
	}
	return choices, nil
}

// Acknowledge confirms receipt of one task on the employee's behalf.
// The employee check keeps a forged callback id from acknowledging
// someone else's task.
func (e *Engine) Acknowledge(ctx context.Context, employee *models.User, taskID int64) (*models.Task, error) {
	t, err := e.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.EmployeeID != employee.ID {
		return nil, tasks.ErrNotFound
	}
	return e.svc.MarkReceived(ctx, taskID)
}
