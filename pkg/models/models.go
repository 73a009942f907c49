package models

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

// Status is a task lifecycle state. Transitions only move forward:
// created -> received -> completed -> closed.
type Status string

const (
	StatusCreated   Status = "created"
	StatusReceived  Status = "received"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusCreated, StatusReceived, StatusCompleted, StatusClosed:
		return Status(s), true
	}
	return "", false
}

// rank orders statuses for forward-only checks.
func (s Status) rank() int {
	switch s {
	case StatusCreated:
		return 0
	case StatusReceived:
		return 1
	case StatusCompleted:
		return 2
	case StatusClosed:
		return 3
	}
	return -1
}

// CanAdvanceTo reports whether moving from s to next is a single
// forward step. No state may be skipped and no regression is allowed.
func (s Status) CanAdvanceTo(next Status) bool {
	return next.rank() == s.rank()+1
}

type Shift int

const (
	ShiftFirst  Shift = 1 // 08:00-20:00
	ShiftSecond Shift = 2 // 20:00-08:00
)

func (s Shift) Label() string {
	if s == ShiftSecond {
		return "2-я смена (20:00-08:00)"
	}
	return "1-я смена (08:00-20:00)"
}

func (s Shift) Short() string {
	if s == ShiftSecond {
		return "2-я"
	}
	return "1-я"
}

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName is the name shown in task lists and reports.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "ID: " + strconv.FormatInt(u.TelegramID, 10)
}

type Workshop struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Equipment struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	WorkshopID *int64    `json:"workshop_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Product struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Code               string    `json:"code,omitempty"`
	DefaultEquipmentID *int64    `json:"default_equipment_id,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

type Task struct {
	ID              int64      `json:"id"`
	ManagerID       int64      `json:"manager_id"`
	EmployeeID      int64      `json:"employee_id"`
	EquipmentID     int64      `json:"equipment_id"`
	ProductID       int64      `json:"product_id"`
	PlannedQuantity float64    `json:"planned_quantity"`
	ActualQuantity  float64    `json:"actual_quantity"`
	Shift           Shift      `json:"shift"`
	TaskDate        time.Time  `json:"task_date"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// TaskDetail is a task joined with the display names of its
// references, as delivered by list queries.
type TaskDetail struct {
	Task
	ManagerName   string `json:"manager_name"`
	EmployeeName  string `json:"employee_name"`
	EquipmentName string `json:"equipment_name"`
	ProductName   string `json:"product_name"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TaskID    int64     `json:"task_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
