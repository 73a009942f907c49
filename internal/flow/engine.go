// Package flow implements the interactive dialogues of the bot as
// explicit step machines: each flow is an enum of steps plus an
// Advance function mapping (step, input) to the next prompt or a
// terminal outcome. The chat adapter renders prompts; the flows here
// never format messages beyond user-facing reasons.
package flow

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
)

type Engine struct {
	db  *sqlite.DB
	svc *tasks.Service
	loc *time.Location
}

func NewEngine(db *sqlite.DB, svc *tasks.Service, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{db: db, svc: svc, loc: loc}
}

// ParseQuantity accepts free-text numeric input with either a comma
// or a dot as the decimal separator.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}
