package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Notifier pushes a notification text to a user over the chat
// transport. A nil Notifier only records notifications in storage.
type Notifier interface {
	Notify(user *models.User, text string)
}

// Service is the task lifecycle state machine. It owns status
// transitions and their side effects (timestamps, notifications).
// Identity and role checks happen in the guard before a Service call;
// the Service only validates state.
type Service struct {
	db       *sqlite.DB
	log      *logrus.Logger
	notifier Notifier
	loc      *time.Location
}

func NewService(db *sqlite.DB, log *logrus.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{db: db, log: log, loc: loc}
}

// SetNotifier attaches the chat transport once it exists. Wiring is
// circular otherwise: the bot needs the service and the service needs
// the bot's sender.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

type CreateInput struct {
	ManagerID       int64
	EmployeeID      int64
	EquipmentID     int64
	ProductID       int64
	PlannedQuantity float64
	Shift           models.Shift
	TaskDate        time.Time
	Notes           string
}

// Create validates the input, writes a task in CREATED and notifies
// the employee of the new assignment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Task, error) {
	if in.PlannedQuantity <= 0 {
		return nil, validationf("плановое количество должно быть больше нуля")
	}
	if in.Shift != models.ShiftFirst && in.Shift != models.ShiftSecond {
		return nil, validationf("смена должна быть 1 или 2")
	}

	equipment, err := s.db.GetEquipment(ctx, in.EquipmentID)
	if err != nil {
		return nil, err
	}
	product, err := s.db.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	ok, err := s.compatible(ctx, product, equipment.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationf("продукция «%s» не производится на оборудовании «%s»", product.Name, equipment.Name)
	}
	employee, err := s.db.GetUserByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ManagerID:       in.ManagerID,
		EmployeeID:      in.EmployeeID,
		EquipmentID:     in.EquipmentID,
		ProductID:       in.ProductID,
		PlannedQuantity: in.PlannedQuantity,
		Shift:           in.Shift,
		TaskDate:        in.TaskDate,
		Status:          models.StatusCreated,
		CreatedAt:       time.Now().In(s.loc),
		Notes:           in.Notes,
	}
	id, err := s.db.CreateTask(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	msg := fmt.Sprintf("📋 Вам назначено новое задание №%d\n\nОборудование: %s\nПродукция: %s\nКоличество: %g\nСмена: %s\nДата: %s",
		t.ID, equipment.Name, product.Name, t.PlannedQuantity, t.Shift.Label(), t.TaskDate.Format("02.01.2006"))
	s.notify(ctx, employee, t.ID, msg)

	s.log.WithFields(logrus.Fields{"task_id": t.ID, "manager_id": t.ManagerID, "employee_id": t.EmployeeID}).
		Info("task created")
	return t, nil
}

// MarkReceived moves CREATED -> RECEIVED, stamping received_at once.
// Any other starting status is rejected, so a second acknowledgement
// fails rather than silently succeeding.
func (s *Service) MarkReceived(ctx context.Context, taskID int64) (*models.Task, error) {
	t, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusCreated {
		return nil, ErrInvalidTransition
	}
	now := time.Now().In(s.loc)
	t.Status = models.StatusReceived
	t.ReceivedAt = &now
	if err := s.db.UpdateTaskState(ctx, t); err != nil {
		return nil, err
	}

	if manager, merr := s.db.GetUserByID(ctx, t.ManagerID); merr == nil {
		employee, _ := s.db.GetUserByID(ctx, t.EmployeeID)
		name := "сотрудник"
		if employee != nil {
			name = employee.DisplayName()
		}
		s.notify(ctx, manager, t.ID, fmt.Sprintf("✅ Сотрудник %s подтвердил получение задания №%d", name, t.ID))
	}

	s.log.WithField("task_id", t.ID).Info("task received")
	return t, nil
}

// ReportActual records the actual quantity and completes the task
// regardless of its prior status: a manager may force-complete a task
// that was never acknowledged.
func (s *Service) ReportActual(ctx context.Context, taskID int64, actual float64) (*models.Task, error) {
	if actual < 0 {
		return nil, validationf("фактическое количество не может быть отрицательным")
	}
	t, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	now := time.Now().In(s.loc)
	t.ActualQuantity = actual
	t.Status = models.StatusCompleted
	t.CompletedAt = &now
	if err := s.db.UpdateTaskState(ctx, t); err != nil {
		return nil, err
	}

	if manager, merr := s.db.GetUserByID(ctx, t.ManagerID); merr == nil {
		employee, _ := s.db.GetUserByID(ctx, t.EmployeeID)
		name := "сотрудник"
		if employee != nil {
			name = employee.DisplayName()
		}
		s.notify(ctx, manager, t.ID,
			fmt.Sprintf("📝 Сотрудник %s отчитался по заданию №%d:\nПлан: %g | Факт: %g", name, t.ID, t.PlannedQuantity, actual))
	}

	s.log.WithFields(logrus.Fields{"task_id": t.ID, "actual": actual}).Info("task reported")
	return t, nil
}

// UpdateStatus is the raw mutator behind the administrative API. It
// enforces forward-only transitions but emits no notifications; the
// flow-level operations above own notification emission.
func (s *Service) UpdateStatus(ctx context.Context, taskID int64, status models.Status) (*models.Task, error) {
	t, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanAdvanceTo(status) {
		return nil, ErrInvalidTransition
	}
	now := time.Now().In(s.loc)
	t.Status = status
	switch status {
	case models.StatusReceived:
		if t.ReceivedAt == nil {
			t.ReceivedAt = &now
		}
	case models.StatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	}
	if err := s.db.UpdateTaskState(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": t.ID, "status": status}).Info("task status updated")
	return t, nil
}

// UpdateActual is the raw quantity mutator behind the administrative
// API. It does not touch the status and emits no notifications.
func (s *Service) UpdateActual(ctx context.Context, taskID int64, actual float64) (*models.Task, error) {
	if actual < 0 {
		return nil, validationf("фактическое количество не может быть отрицательным")
	}
	t, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t.ActualQuantity = actual
	if err := s.db.UpdateTaskState(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) compatible(ctx context.Context, product *models.Product, equipmentID int64) (bool, error) {
	if product.DefaultEquipmentID != nil && *product.DefaultEquipmentID == equipmentID {
		return true, nil
	}
	linked, err := s.db.EquipmentForProduct(ctx, product.ID)
	if err != nil {
		return false, err
	}
	for _, e := range linked {
		if e.ID == equipmentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) notify(ctx context.Context, user *models.User, taskID int64, text string) {
	if _, err := s.db.CreateNotification(ctx, user.ID, taskID, text); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("create notification")
	}
	if s.notifier != nil {
		s.notifier.Notify(user, "🔔 "+text)
	}
}
