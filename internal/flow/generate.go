package flow

import (
	"context"
	"time"

	"github.com/pkruglov/shopfloor-bot/internal/report"
	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
)

type GenerateStep int

const (
	StepSelectPeriod GenerateStep = iota
	StepEnterDateFrom
	StepEnterDateTo
	StepSelectFormat
)

const dateLayout = "02.01.2006"

// GenerateFlow is the in-progress report request of one manager.
type GenerateFlow struct {
	ManagerID int64
	Step      GenerateStep
	Period    report.Period
	HasPeriod bool
	Format    string
}

type GeneratePrompt struct {
	Step GenerateStep
}

// ReportRequest is the terminal outcome of the dialogue: a fully
// resolved period plus format, ready for GenerateReport.
type ReportRequest struct {
	ManagerID int64
	Period    report.Period
	Format    string
}

// Period tokens are selected by callback id in the chat adapter.
var PeriodChoices = []Choice{
	{ID: 1, Label: "Вчера"},
	{ID: 2, Label: "Текущая неделя"},
	{ID: 3, Label: "Текущий месяц"},
	{ID: 4, Label: "Произвольный период"},
}

var periodTokens = map[int64]string{
	1: report.PeriodYesterday,
	2: report.PeriodWeek,
	3: report.PeriodMonth,
	4: report.PeriodCustom,
}

var FormatChoices = []Choice{
	{ID: 1, Label: "CSV"},
	{ID: 2, Label: "PDF"},
	{ID: 3, Label: "Excel"},
}

var formatTokens = map[int64]string{
	1: report.FormatCSV,
	2: report.FormatPDF,
	3: report.FormatXLSX,
}

func (e *Engine) StartGenerate(manager int64) (*GenerateFlow, *GeneratePrompt) {
	f := &GenerateFlow{ManagerID: manager, Step: StepSelectPeriod}
	return f, &GeneratePrompt{Step: StepSelectPeriod}
}

// AdvanceGenerate applies one input. Custom periods are collected as
// two dates; a bad second date keeps the first so the actor only
// retypes what was wrong.
func (e *Engine) AdvanceGenerate(ctx context.Context, f *GenerateFlow, in Input) (*GeneratePrompt, *ReportRequest, error) {
	if in.Cancel {
		return nil, nil, ErrCancelled
	}

	switch f.Step {
	case StepSelectPeriod:
		if !in.HasSelect {
			return nil, nil, retry("Выберите период кнопкой.")
		}
		token, ok := periodTokens[in.Select]
		if !ok {
			return nil, nil, retry("Выберите период кнопкой.")
		}
		if token == report.PeriodCustom {
			f.Step = StepEnterDateFrom
			return &GeneratePrompt{Step: StepEnterDateFrom}, nil, nil
		}
		p, err := e.ResolvePeriod(token)
		if err != nil {
			return nil, nil, retry("Выберите период кнопкой.")
		}
		f.Period = p
		f.HasPeriod = true
		f.Step = StepSelectFormat
		return &GeneratePrompt{Step: StepSelectFormat}, nil, nil

	case StepEnterDateFrom:
		from, err := e.parseDate(in)
		if err != nil {
			return nil, nil, err
		}
		if from.After(e.yesterday()) {
			return nil, nil, retry("Отчёт строится только по завершённым дням, не позднее вчерашнего.")
		}
		f.Period.From = from
		f.Step = StepEnterDateTo
		return &GeneratePrompt{Step: StepEnterDateTo}, nil, nil

	case StepEnterDateTo:
		to, err := e.parseDate(in)
		if err != nil {
			return nil, nil, err
		}
		if to.Before(f.Period.From) {
			return nil, nil, retry("Дата окончания не может быть раньше даты начала.")
		}
		if to.After(e.yesterday()) {
			return nil, nil, retry("Отчёт строится только по завершённым дням, не позднее вчерашнего.")
		}
		f.Period.To = to
		f.HasPeriod = true
		f.Step = StepSelectFormat
		return &GeneratePrompt{Step: StepSelectFormat}, nil, nil

	case StepSelectFormat:
		if !in.HasSelect {
			return nil, nil, retry("Выберите формат кнопкой.")
		}
		format, ok := formatTokens[in.Select]
		if !ok {
			return nil, nil, retry("Выберите формат кнопкой.")
		}
		f.Format = format
		return nil, &ReportRequest{ManagerID: f.ManagerID, Period: f.Period, Format: format}, nil
	}
	return nil, nil, retry("Неизвестный шаг диалога.")
}

// yesterday is the latest day a report may cover: the current day is
// still accumulating.
func (e *Engine) yesterday() time.Time {
	return report.Midnight(time.Now().In(e.loc)).AddDate(0, 0, -1)
}

func (e *Engine) parseDate(in Input) (time.Time, error) {
	if !in.HasText {
		return time.Time{}, retry("Введите дату в формате ДД.ММ.ГГГГ.")
	}
	t, err := time.ParseInLocation(dateLayout, in.Text, e.loc)
	if err != nil {
		return time.Time{}, retry("Введите дату в формате ДД.ММ.ГГГГ.")
	}
	return t, nil
}

// ResolvePeriod anchors a named period token at today in the
// configured timezone. Every surface resolves periods through this
// method so they agree on where the day boundary falls.
func (e *Engine) ResolvePeriod(token string) (report.Period, error) {
	return report.Resolve(token, time.Now().In(e.loc))
}

// GenerateReport is the single rendering path behind both the chat
// dialogue and the administrative API: fetch the manager's tasks in
// the period, build rows and render. An empty period or an empty task
// set is a user-facing outcome, not an error.
func (e *Engine) GenerateReport(ctx context.Context, req ReportRequest) ([]byte, string, error) {
	if !report.ValidFormat(req.Format) {
		return nil, "", retry("Неизвестный формат отчёта.")
	}
	if req.Period.Empty() {
		return nil, "", empty("За выбранный период заданий нет.")
	}
	list, err := e.db.ListTasks(ctx, sqlite.TaskFilter{
		ManagerID: &req.ManagerID,
		DateFrom:  &req.Period.From,
		DateTo:    &req.Period.To,
	})
	if err != nil {
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", empty("За выбранный период заданий нет.")
	}
	rows := report.BuildRows(list)
	title := "Отчёт по заданиям " + req.Period.From.Format(dateLayout) + " - " + req.Period.To.Format(dateLayout)
	data, err := report.Render(req.Format, rows, title)
	if err != nil {
		return nil, "", err
	}
	return data, report.FileName(req.ManagerID, req.Format, time.Now().In(e.loc)), nil
}
