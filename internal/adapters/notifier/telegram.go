package notifier

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
)

// Callback data prefixes understood by the bot's callback handler.
const (
	CallbackAccept   = "match_accept_"
	CallbackDecline  = "match_decline_"
	CallbackComplete = "match_complete_"
	CallbackFeedback = "feedback_"
)

// TelegramNotifier delivers notifications through the Telegram Bot API.
type TelegramNotifier struct {
	api       *tgbotapi.BotAPI
	webappURL string
	log       logger.Logger
}

// NewTelegramNotifier authenticates against the Bot API with token.
// webappURL, when set, is the base of the profile web app linked from
// announcement keyboards.
func NewTelegramNotifier(token, webappURL string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramNotifier{
		api:       api,
		webappURL: strings.TrimRight(webappURL, "/"),
		log:       logger.Named("telegram"),
	}, nil
}

func (n *TelegramNotifier) AnnounceNewPairing(ctx context.Context, member, counterpart model.Member, pairingID int64) error {
	bio := counterpart.Bio
	if bio == "" {
		bio = "No bio provided"
	}
	text := fmt.Sprintf(
		"🎉 <b>New Coffee Match!</b>\n\n"+
			"You've been matched with <b>%s</b> for a coffee chat!\n\n"+
			"<b>About them:</b> %s\n\n"+
			"<b>Interests:</b> %s\n\n"+
			"Click the button below to view their full profile and accept or decline the match.",
		counterpart.FullName, bio, strings.Join(counterpart.Interests, ", "))

	return n.send(ctx, member, text, n.decisionKeyboard(counterpart, pairingID))
}

func (n *TelegramNotifier) AnnounceStatusChange(ctx context.Context, member, counterpart model.Member, pairingID int64, status model.Status) error {
	switch status {
	case model.StatusAccepted:
		text := fmt.Sprintf(
			"🎉 <b>Match Accepted!</b>\n\n"+
				"<b>%s</b> has accepted your coffee match request!\n\n"+
				"You can now contact them directly to arrange a time and place for your coffee chat.",
			counterpart.FullName)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(
					fmt.Sprintf("Contact %s", counterpart.FullName),
					fmt.Sprintf("tg://user?id=%d", counterpart.TelegramID)),
				tgbotapi.NewInlineKeyboardButtonData("Mark as Completed",
					fmt.Sprintf("%s%d", CallbackComplete, pairingID)),
			))
		return n.send(ctx, member, text, &keyboard)

	case model.StatusDeclined:
		text := fmt.Sprintf(
			"❌ <b>Match Declined</b>\n\n"+
				"Unfortunately, <b>%s</b> has declined your coffee match request.\n\n"+
				"Don't worry, we'll find you a new match soon!",
			counterpart.FullName)
		return n.send(ctx, member, text, nil)

	case model.StatusCompleted:
		text := fmt.Sprintf(
			"✅ <b>Coffee Match Completed!</b>\n\n"+
				"Your coffee chat with <b>%s</b> has been marked as completed.\n\n"+
				"Would you like to leave feedback?",
			counterpart.FullName)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Leave Feedback",
					fmt.Sprintf("%s%d", CallbackFeedback, pairingID)),
			))
		return n.send(ctx, member, text, &keyboard)
	}

	// Other statuses carry no member facing message.
	return nil
}

func (n *TelegramNotifier) SendReminder(ctx context.Context, member, counterpart model.Member, pairingID int64) error {
	text := fmt.Sprintf(
		"⏰ <b>Reminder: Pending Coffee Match</b>\n\n"+
			"You still have a pending coffee match with <b>%s</b>.\n\n"+
			"Please accept or decline the match.",
		counterpart.FullName)

	return n.send(ctx, member, text, n.decisionKeyboard(counterpart, pairingID))
}

// decisionKeyboard is the profile link plus accept/decline row attached to
// announcements and reminders.
func (n *TelegramNotifier) decisionKeyboard(counterpart model.Member, pairingID int64) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 2)
	if n.webappURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonWebApp("View Profile", tgbotapi.WebAppInfo{
				URL: fmt.Sprintf("%s/profile/%d", n.webappURL, counterpart.ID),
			})))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Accept ✅",
			fmt.Sprintf("%s%d", CallbackAccept, pairingID)),
		tgbotapi.NewInlineKeyboardButtonData("Decline ❌",
			fmt.Sprintf("%s%d", CallbackDecline, pairingID)),
	))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func (n *TelegramNotifier) send(ctx context.Context, member model.Member, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(member.TelegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := n.api.Send(msg); err != nil {
		n.log.Error(ctx, "telegram send failed",
			logger.Int64("telegram_id", member.TelegramID),
			logger.Error(err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
