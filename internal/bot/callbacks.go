package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/guard"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Callback data prefixes. Selection callbacks carry the chosen id
// after the prefix; ack_ is handled outside the flow engine because
// acknowledgement is a single action, not a dialogue.
const (
	cbEquipment = "eq_"
	cbProduct   = "prod_"
	cbEmployee  = "emp_"
	cbShift     = "shift_"
	cbAck       = "ack_"
	cbTask      = "rep_"
	cbPeriod    = "period_"
	cbFormat    = "fmt_"
	cbConfirm   = "confirm"
	cbCancel    = "cancel"
)

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	// Telegram omits the message on callbacks against sufficiently old
	// messages; without it there is no chat to answer into.
	if cq.Message == nil {
		b.log.WithField("data", cq.Data).Warn("callback without message, dropped")
		return
	}
	ctx := context.Background()
	user, err := b.ensureUser(ctx, cq.From)
	if err != nil {
		b.log.WithError(err).Error("upsert user")
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.WithError(err).Warn("answer callback")
	}
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case data == cbCancel:
		b.applyInput(ctx, chatID, user, flow.CancelInput())
	case data == cbConfirm:
		b.applyInput(ctx, chatID, user, flow.ConfirmInput())
	case strings.HasPrefix(data, cbAck):
		id, perr := strconv.ParseInt(strings.TrimPrefix(data, cbAck), 10, 64)
		if perr != nil {
			return
		}
		b.acknowledge(ctx, chatID, user, id)
	default:
		for _, prefix := range []string{cbEquipment, cbProduct, cbEmployee, cbShift, cbTask, cbPeriod, cbFormat} {
			if strings.HasPrefix(data, prefix) {
				id, perr := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
				if perr != nil {
					return
				}
				b.applyInput(ctx, chatID, user, flow.SelectInput(id))
				return
			}
		}
	}
}

// applyInput advances whichever dialogue the user has open.
func (b *Bot) applyInput(ctx context.Context, chatID int64, user *models.User, in flow.Input) {
	switch f := b.sessions.Get(user.ID).(type) {
	case *flow.CreateFlow:
		prompt, task, err := b.engine.AdvanceCreate(ctx, f, in)
		if err != nil {
			b.handleFlowErr(ctx, chatID, user, err)
			return
		}
		if task != nil {
			b.sessions.Clear(user.ID)
			b.sendMenu(chatID, user, fmt.Sprintf("✅ Задание №%d создано. Сотрудник уведомлён.", task.ID))
			return
		}
		b.sendCreatePrompt(chatID, prompt)
	case *flow.ReportFlow:
		prompt, task, err := b.engine.AdvanceReport(ctx, f, in)
		if err != nil {
			b.handleFlowErr(ctx, chatID, user, err)
			return
		}
		if task != nil {
			b.sessions.Clear(user.ID)
			b.sendMenu(chatID, user, fmt.Sprintf("✅ Отчёт по заданию №%d принят. Менеджер уведомлён.", task.ID))
			return
		}
		b.sendReportPrompt(chatID, prompt)
	case *flow.GenerateFlow:
		prompt, req, err := b.engine.AdvanceGenerate(ctx, f, in)
		if err != nil {
			b.handleFlowErr(ctx, chatID, user, err)
			return
		}
		if req != nil {
			b.sessions.Clear(user.ID)
			b.deliverReport(ctx, chatID, user, *req)
			return
		}
		b.sendGeneratePrompt(chatID, prompt)
	default:
		b.reply(chatID, "Нет активного действия. Выберите действие кнопкой меню.")
	}
}

func (b *Bot) startCreate(ctx context.Context, chatID int64, user *models.User) {
	f, prompt, err := b.engine.StartCreate(ctx, user)
	if err != nil {
		b.handleFlowErr(ctx, chatID, user, err)
		return
	}
	b.sessions.Put(user.ID, f)
	b.sendCreatePrompt(chatID, prompt)
}

func (b *Bot) startReport(ctx context.Context, chatID int64, user *models.User) {
	f, prompt, err := b.engine.StartReport(ctx, user)
	if err != nil {
		b.handleFlowErr(ctx, chatID, user, err)
		return
	}
	b.sessions.Put(user.ID, f)
	b.sendReportPrompt(chatID, prompt)
}

func (b *Bot) startGenerate(chatID int64, user *models.User) {
	f, prompt := b.engine.StartGenerate(user.ID)
	b.sessions.Put(user.ID, f)
	b.sendGeneratePrompt(chatID, prompt)
}

func (b *Bot) showAckChoices(ctx context.Context, chatID int64, user *models.User) {
	choices, err := b.engine.AckChoices(ctx, user)
	if err != nil {
		b.handleFlowErr(ctx, chatID, user, err)
		return
	}
	b.sendChoices(chatID, "Выберите задание для подтверждения:", choices, cbAck)
}

func (b *Bot) acknowledge(ctx context.Context, chatID int64, user *models.User, taskID int64) {
	if !guard.IsEmployee(user) {
		b.reply(chatID, "Эта функция доступна только сотрудникам.")
		return
	}
	t, err := b.engine.Acknowledge(ctx, user, taskID)
	if err != nil {
		b.handleFlowErr(ctx, chatID, user, err)
		return
	}
	b.sendMenu(chatID, user, fmt.Sprintf("✅ Получение задания №%d подтверждено. Менеджер уведомлён.", t.ID))
}

func (b *Bot) deliverReport(ctx context.Context, chatID int64, user *models.User, req flow.ReportRequest) {
	data, name, err := b.engine.GenerateReport(ctx, req)
	if err != nil {
		b.handleFlowErr(ctx, chatID, user, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = "📈 Отчёт готов"
	if _, err := b.api.Send(doc); err != nil {
		b.log.WithError(err).Error("send report")
		b.sendMenu(chatID, user, "Не удалось отправить файл отчёта.")
		return
	}
	b.sendMenu(chatID, user, "Отчёт отправлен.")
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancel))
}

// sendChoices renders one choice per row plus the cancel button.
func (b *Bot) sendChoices(chatID int64, text string, choices []flow.Choice, prefix string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, fmt.Sprintf("%s%d", prefix, c.ID))))
	}
	rows = append(rows, cancelRow())
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("send choices")
	}
}

func (b *Bot) sendTextPrompt(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(cancelRow())
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("send prompt")
	}
}

func (b *Bot) sendCreatePrompt(chatID int64, p *flow.CreatePrompt) {
	switch p.Step {
	case flow.StepSelectEquipment:
		b.sendChoices(chatID, "Выберите оборудование:", p.Choices, cbEquipment)
	case flow.StepSelectProduct:
		b.sendChoices(chatID, "Выберите продукцию:", p.Choices, cbProduct)
	case flow.StepEnterQuantity:
		b.sendTextPrompt(chatID, "Введите плановое количество:")
	case flow.StepSelectEmployee:
		b.sendChoices(chatID, "Выберите сотрудника:", p.Choices, cbEmployee)
	case flow.StepSelectShift:
		b.sendChoices(chatID, "Выберите смену:", p.Choices, cbShift)
	case flow.StepConfirm:
		d := p.Draft
		text := fmt.Sprintf("Проверьте задание:\n\nОборудование: %s\nПродукция: %s\nКоличество: %g\nСотрудник: %s\nСмена: %s",
			d.EquipmentName, d.ProductName, d.Quantity, d.EmployeeName, d.Shift.Label())
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Создать", cbConfirm)),
			cancelRow(),
		)
		if _, err := b.api.Send(msg); err != nil {
			b.log.WithError(err).Warn("send confirm prompt")
		}
	}
}

func (b *Bot) sendReportPrompt(chatID int64, p *flow.ReportPrompt) {
	switch p.Step {
	case flow.StepSelectTask:
		b.sendChoices(chatID, "Выберите задание для отчёта:", p.Choices, cbTask)
	case flow.StepEnterActual:
		b.sendTextPrompt(chatID, fmt.Sprintf("Введите фактическое количество (план: %g):", p.Planned))
	}
}

func (b *Bot) sendGeneratePrompt(chatID int64, p *flow.GeneratePrompt) {
	switch p.Step {
	case flow.StepSelectPeriod:
		b.sendChoices(chatID, "Выберите период отчёта:", flow.PeriodChoices, cbPeriod)
	case flow.StepEnterDateFrom:
		b.sendTextPrompt(chatID, "Введите дату начала (ДД.ММ.ГГГГ):")
	case flow.StepEnterDateTo:
		b.sendTextPrompt(chatID, "Введите дату окончания (ДД.ММ.ГГГГ):")
	case flow.StepSelectFormat:
		b.sendChoices(chatID, "Выберите формат отчёта:", flow.FormatChoices, cbFormat)
	}
}
