package flow

import (
	"context"
	"time"

	"github.com/pkruglov/shopfloor-bot/internal/report"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Steps of the task-creation dialogue, in order. Cancel is available
// from every step.
type CreateStep int

const (
	StepSelectEquipment CreateStep = iota
	StepSelectProduct
	StepEnterQuantity
	StepSelectEmployee
	StepSelectShift
	StepConfirm
)

type CreateDraft struct {
	EquipmentID   int64
	EquipmentName string
	ProductID     int64
	ProductName   string
	Quantity      float64
	EmployeeID    int64
	EmployeeName  string
	Shift         models.Shift
}

// CreateFlow is the in-progress task-creation dialogue of one manager.
type CreateFlow struct {
	ManagerID int64
	Step      CreateStep
	Draft     CreateDraft
}

// CreatePrompt tells the adapter what to render next: the step, the
// offered choices for selection steps, and the collected draft at the
// confirmation step.
type CreatePrompt struct {
	Step    CreateStep
	Choices []Choice
	Draft   *CreateDraft
}

// StartCreate opens the dialogue at SelectEquipment. An empty
// equipment set aborts immediately with an explanatory message.
func (e *Engine) StartCreate(ctx context.Context, manager *models.User) (*CreateFlow, *CreatePrompt, error) {
	equipment, err := e.db.ListActiveEquipment(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if len(equipment) == 0 {
		return nil, nil, empty("В системе нет оборудования. Обратитесь к администратору.")
	}
	choices := make([]Choice, 0, len(equipment))
	for _, eq := range equipment {
		choices = append(choices, Choice{ID: eq.ID, Label: eq.Name})
	}
	f := &CreateFlow{ManagerID: manager.ID, Step: StepSelectEquipment}
	return f, &CreatePrompt{Step: StepSelectEquipment, Choices: choices}, nil
}

// AdvanceCreate applies one input to the flow. It returns the next
// prompt, or the committed task at the end. A RetryError re-prompts
// the same step, an EmptyError aborts the flow, ErrCancelled ends it
// on the actor's cancel.
func (e *Engine) AdvanceCreate(ctx context.Context, f *CreateFlow, in Input) (*CreatePrompt, *models.Task, error) {
	if in.Cancel {
		return nil, nil, ErrCancelled
	}

	switch f.Step {
	case StepSelectEquipment:
		if !in.HasSelect {
			return nil, nil, retry("Выберите оборудование кнопкой.")
		}
		eq, err := e.db.GetEquipment(ctx, in.Select)
		if err != nil {
			return nil, nil, err
		}
		f.Draft.EquipmentID = eq.ID
		f.Draft.EquipmentName = eq.Name

		products, err := e.db.ListProductsForEquipment(ctx, eq.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(products) == 0 {
			return nil, nil, empty("Для выбранного оборудования нет доступной продукции.")
		}
		choices := make([]Choice, 0, len(products))
		for _, p := range products {
			choices = append(choices, Choice{ID: p.ID, Label: p.Name})
		}
		f.Step = StepSelectProduct
		return &CreatePrompt{Step: StepSelectProduct, Choices: choices}, nil, nil

	case StepSelectProduct:
		if !in.HasSelect {
			return nil, nil, retry("Выберите продукцию кнопкой.")
		}
		p, err := e.db.GetProduct(ctx, in.Select)
		if err != nil {
			return nil, nil, err
		}
		f.Draft.ProductID = p.ID
		f.Draft.ProductName = p.Name
		f.Step = StepEnterQuantity
		return &CreatePrompt{Step: StepEnterQuantity}, nil, nil

	case StepEnterQuantity:
		if !in.HasText {
			return nil, nil, retry("Введите количество текстом.")
		}
		qty, err := ParseQuantity(in.Text)
		if err != nil {
			return nil, nil, retry("Введите корректное число.")
		}
		if qty <= 0 {
			return nil, nil, retry("Количество должно быть больше нуля.")
		}
		f.Draft.Quantity = qty

		employees, err := e.db.ListActiveEmployees(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(employees) == 0 {
			return nil, nil, empty("В системе нет сотрудников.")
		}
		choices := make([]Choice, 0, len(employees))
		for _, u := range employees {
			choices = append(choices, Choice{ID: u.ID, Label: u.DisplayName()})
		}
		f.Step = StepSelectEmployee
		return &CreatePrompt{Step: StepSelectEmployee, Choices: choices}, nil, nil

	case StepSelectEmployee:
		if !in.HasSelect {
			return nil, nil, retry("Выберите сотрудника кнопкой.")
		}
		u, err := e.db.GetUserByID(ctx, in.Select)
		if err != nil {
			return nil, nil, err
		}
		f.Draft.EmployeeID = u.ID
		f.Draft.EmployeeName = u.DisplayName()
		f.Step = StepSelectShift
		return &CreatePrompt{
			Step: StepSelectShift,
			Choices: []Choice{
				{ID: int64(models.ShiftFirst), Label: models.ShiftFirst.Label()},
				{ID: int64(models.ShiftSecond), Label: models.ShiftSecond.Label()},
			},
		}, nil, nil

	case StepSelectShift:
		if !in.HasSelect || (in.Select != int64(models.ShiftFirst) && in.Select != int64(models.ShiftSecond)) {
			return nil, nil, retry("Выберите смену кнопкой.")
		}
		f.Draft.Shift = models.Shift(in.Select)
		f.Step = StepConfirm
		draft := f.Draft
		return &CreatePrompt{Step: StepConfirm, Draft: &draft}, nil, nil

	case StepConfirm:
		if !in.Confirm {
			return nil, nil, retry("Подтвердите или отмените создание задания.")
		}
		// task_date is the day of confirmation, server timezone.
		today := report.Midnight(time.Now().In(e.loc))
		task, err := e.svc.Create(ctx, tasks.CreateInput{
			ManagerID:       f.ManagerID,
			EmployeeID:      f.Draft.EmployeeID,
			EquipmentID:     f.Draft.EquipmentID,
			ProductID:       f.Draft.ProductID,
			PlannedQuantity: f.Draft.Quantity,
			Shift:           f.Draft.Shift,
			TaskDate:        today,
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, task, nil
	}
	return nil, nil, retry("Неизвестный шаг диалога.")
}
