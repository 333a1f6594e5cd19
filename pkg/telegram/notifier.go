package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog"

	"github.com/mdolezal/sreality-alert/pkg/model"
)

// Notifier pushes newly ingested listings to a single Telegram chat. Send
// failures are logged and otherwise ignored; alerting never blocks ingestion.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

// NewNotifier creates a notifier for the given bot token and chat.
func NewNotifier(token string, chatID int64, log zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		log:    log.With().Str("component", "telegram").Logger(),
	}, nil
}

// NotifyNew sends one message per listing, in ingestion order.
func (n *Notifier) NotifyNew(listings []model.Listing) {
	for _, listing := range listings {
		msg := tgbotapi.NewMessage(n.chatID, formatListing(listing))
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Error().Err(err).Int64("hash_id", listing.HashID).Msg("could not send notification")
		}
	}
}

func formatListing(l model.Listing) string {
	var b strings.Builder
	f := fmt.Sprintf
	b.WriteString(f("%s\n", l.Name))
	b.WriteString(f("%s\n", l.Locality))
	b.WriteString(f("%d %s", l.Price, l.PriceUnit))
	if l.RoomLayout != nil {
		b.WriteString(f("\nLayout: %s", *l.RoomLayout))
	}
	if l.SizeSQM != nil {
		b.WriteString(f("\nSize: %d m²", *l.SizeSQM))
	}
	if l.HasGarage {
		b.WriteString("\nGarage available")
	}
	if len(l.Images) > 0 {
		b.WriteString(f("\n%s", l.Images[0]))
	}

	return b.String()
}
