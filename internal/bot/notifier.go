package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

// Notifier pushes lifecycle notifications to users over Telegram. A
// failed send is logged and dropped: the notification row is already
// stored and surfaces through the unread list.
type Notifier struct {
	api *tgbotapi.BotAPI
	log *logrus.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, log *logrus.Logger) *Notifier {
	return &Notifier{api: api, log: log}
}

func (n *Notifier) Notify(user *models.User, text string) {
	if _, err := n.api.Send(tgbotapi.NewMessage(user.TelegramID, text)); err != nil {
		n.log.WithError(err).WithField("telegram_id", user.TelegramID).Warn("notify send failed")
	}
}
