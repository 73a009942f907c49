package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/guard"
	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Reply-keyboard button captions. Button presses arrive as plain text
// messages, so these double as routing keys.
const (
	btnCreateTask    = "📋 Создать задание"
	btnManagerTasks  = "📊 Мои задания"
	btnReport        = "📈 Отчет"
	btnNotifications = "🔔 Уведомления"
	btnEmployeeTasks = "📋 Мои задания"
	btnAcknowledge   = "✅ Подтвердить задание"
	btnReportActual  = "📝 Отчитаться"
)

var managerKB = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnCreateTask),
		tgbotapi.NewKeyboardButton(btnManagerTasks),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnReport),
		tgbotapi.NewKeyboardButton(btnNotifications),
	),
)

var employeeKB = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnEmployeeTasks),
		tgbotapi.NewKeyboardButton(btnAcknowledge),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnReportActual),
		tgbotapi.NewKeyboardButton(btnNotifications),
	),
)

func init() {
	managerKB.ResizeKeyboard = true
	employeeKB.ResizeKeyboard = true
}

type Bot struct {
	api      *tgbotapi.BotAPI
	db       *sqlite.DB
	engine   *flow.Engine
	sessions *flow.Sessions
	log      *logrus.Logger
	adminIDs map[int64]bool
	loc      *time.Location
	locks    actorLocks
}

// actorLocks serializes update handling per telegram user. Updates
// from different users still run concurrently, but two rapid inputs
// from the same user may not advance the same dialogue at once.
type actorLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (l *actorLocks) get(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = map[int64]*sync.Mutex{}
	}
	actorMu, ok := l.m[id]
	if !ok {
		actorMu = &sync.Mutex{}
		l.m[id] = actorMu
	}
	return actorMu
}

func New(api *tgbotapi.BotAPI, db *sqlite.DB, engine *flow.Engine,
	sessions *flow.Sessions, log *logrus.Logger, adminIDs []int64, loc *time.Location) *Bot {
	m := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		m[id] = true
	}
	return &Bot{api: api, db: db, engine: engine, sessions: sessions,
		log: log, adminIDs: m, loc: loc}
}

// Start runs the update loop until the channel closes.
func (b *Bot) Start() error {
	upd := tgbotapi.NewUpdate(0)
	upd.Timeout = 30
	updates := b.api.GetUpdatesChan(upd)

	stop := make(chan struct{})
	defer close(stop)
	b.sessions.StartSweeper(stop)

	for update := range updates {
		if m := update.Message; m != nil {
			go func() {
				actorMu := b.locks.get(m.From.ID)
				actorMu.Lock()
				defer actorMu.Unlock()
				b.handleMessage(m)
			}()
		}
		if cq := update.CallbackQuery; cq != nil {
			go func() {
				actorMu := b.locks.get(cq.From.ID)
				actorMu.Lock()
				defer actorMu.Unlock()
				b.handleCallback(cq)
			}()
		}
	}
	return nil
}

// ensureUser registers the sender on first contact. Admin ids come
// from the config; everyone else starts as an employee and a manager
// role is granted through the administrative API.
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	role := models.RoleEmployee
	if b.adminIDs[from.ID] {
		role = models.RoleAdmin
	}
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	return b.db.UpsertUser(ctx, from.ID, from.UserName, fullName, role)
}

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	ctx := context.Background()
	user, err := b.ensureUser(ctx, m.From)
	if err != nil {
		b.log.WithError(err).Error("upsert user")
		b.reply(m.Chat.ID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			b.sessions.Clear(user.ID)
			b.sendMenu(m.Chat.ID, user, "Здравствуйте, "+user.DisplayName()+"!")
		case "cancel":
			b.sessions.Clear(user.ID)
			b.sendMenu(m.Chat.ID, user, "Действие отменено.")
		default:
			b.reply(m.Chat.ID, "Неизвестная команда. Используйте кнопки меню.")
		}
		return
	}

	switch m.Text {
	case btnCreateTask:
		if !guard.CanManage(user) {
			b.reply(m.Chat.ID, "Эта функция доступна только менеджерам.")
			return
		}
		b.startCreate(ctx, m.Chat.ID, user)
	case btnManagerTasks, btnEmployeeTasks:
		b.showTasks(ctx, m.Chat.ID, user)
	case btnReport:
		if !guard.CanManage(user) {
			b.reply(m.Chat.ID, "Эта функция доступна только менеджерам.")
			return
		}
		b.startGenerate(m.Chat.ID, user)
	case btnAcknowledge:
		if !guard.IsEmployee(user) {
			b.reply(m.Chat.ID, "Эта функция доступна только сотрудникам.")
			return
		}
		b.showAckChoices(ctx, m.Chat.ID, user)
	case btnReportActual:
		if !guard.IsEmployee(user) {
			b.reply(m.Chat.ID, "Эта функция доступна только сотрудникам.")
			return
		}
		b.startReport(ctx, m.Chat.ID, user)
	case btnNotifications:
		b.showNotifications(ctx, m.Chat.ID, user)
	default:
		// Free text feeds the active dialogue, if any.
		if b.sessions.Get(user.ID) != nil {
			b.applyInput(ctx, m.Chat.ID, user, flow.TextInput(m.Text))
			return
		}
		b.sendMenu(m.Chat.ID, user, "Выберите действие кнопкой меню.")
	}
}

func (b *Bot) sendMenu(chatID int64, user *models.User, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if guard.CanManage(user) {
		msg.ReplyMarkup = managerKB
	} else {
		msg.ReplyMarkup = employeeKB
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("send menu")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.WithError(err).Warn("send reply")
	}
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusCreated:
		return "🆕 Создано"
	case models.StatusReceived:
		return "🔧 В работе"
	case models.StatusCompleted:
		return "✅ Выполнено"
	case models.StatusClosed:
		return "🔒 Закрыто"
	}
	return string(s)
}

func (b *Bot) showTasks(ctx context.Context, chatID int64, user *models.User) {
	var f sqlite.TaskFilter
	if guard.CanManage(user) {
		f.ManagerID = &user.ID
	} else {
		f.EmployeeID = &user.ID
	}
	list, err := b.db.ListTasks(ctx, f)
	if err != nil {
		b.log.WithError(err).Error("list tasks")
		b.reply(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}
	if len(list) == 0 {
		b.reply(chatID, "Заданий пока нет.")
		return
	}
	const limit = 10
	if len(list) > limit {
		list = list[:limit]
	}
	var sb strings.Builder
	sb.WriteString("Последние задания:\n")
	for _, t := range list {
		fmt.Fprintf(&sb, "\n№%d | %s | %s смена\n%s, %s\nПлан: %g", t.ID,
			t.TaskDate.Format("02.01.2006"), t.Shift.Short(), t.EquipmentName, t.ProductName, t.PlannedQuantity)
		if t.Status == models.StatusCompleted || t.Status == models.StatusClosed {
			fmt.Fprintf(&sb, " | Факт: %g", t.ActualQuantity)
		}
		if guard.CanManage(user) {
			fmt.Fprintf(&sb, "\nСотрудник: %s", t.EmployeeName)
		}
		sb.WriteString("\n" + statusLabel(t.Status) + "\n")
	}
	b.reply(chatID, sb.String())
}

// showNotifications prints unread notifications and marks each one
// read after it was displayed, so a failed send keeps it unread.
func (b *Bot) showNotifications(ctx context.Context, chatID int64, user *models.User) {
	list, err := b.db.ListUnreadNotifications(ctx, user.ID)
	if err != nil {
		b.log.WithError(err).Error("list notifications")
		b.reply(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}
	if len(list) == 0 {
		b.reply(chatID, "Новых уведомлений нет.")
		return
	}
	for _, n := range list {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, n.Message)); err != nil {
			b.log.WithError(err).Warn("send notification")
			continue
		}
		if err := b.db.MarkNotificationRead(ctx, n.ID); err != nil {
			b.log.WithError(err).WithField("notification_id", n.ID).Error("mark notification read")
		}
	}
}

// handleFlowErr maps a flow error to a chat reply. Retry errors and
// unexpected failures keep the session alive; terminal outcomes clear
// it.
func (b *Bot) handleFlowErr(ctx context.Context, chatID int64, user *models.User, err error) {
	if hint, ok := flow.IsRetry(err); ok {
		b.reply(chatID, hint)
		return
	}
	switch {
	case errors.Is(err, flow.ErrCancelled):
		b.sessions.Clear(user.ID)
		b.sendMenu(chatID, user, "Действие отменено.")
	case flow.IsEmpty(err):
		b.sessions.Clear(user.ID)
		b.sendMenu(chatID, user, err.Error())
	case tasks.IsValidation(err):
		b.sessions.Clear(user.ID)
		b.sendMenu(chatID, user, "Ошибка: "+err.Error())
	case errors.Is(err, tasks.ErrInvalidTransition):
		b.sessions.Clear(user.ID)
		b.sendMenu(chatID, user, "Это задание уже обработано.")
	case errors.Is(err, tasks.ErrNotFound):
		b.sessions.Clear(user.ID)
		b.sendMenu(chatID, user, "Задание не найдено.")
	default:
		b.log.WithError(err).Error("flow error")
		b.reply(chatID, "Произошла ошибка. Попробуйте ещё раз.")
	}
}
