package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tasteal/internal/account"
	"tasteal/internal/planner"
)

// Sender is the part of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Accounts resolves Telegram chats to accounts.
type Accounts interface {
	GetByTelegram(ctx context.Context, chatID int64) (account.Account, error)
	LinkTelegram(ctx context.Context, uid string, chatID int64) error
	ListWithTelegram(ctx context.Context) ([]account.Account, error)
}

// Plans reads scheduled plan items.
type Plans interface {
	ListByDate(ctx context.Context, date time.Time) ([]planner.PlanItem, error)
	ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]planner.PlanItem, error)
}

// NewBotAPI authorizes against the Bot API with the given token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return bot, nil
}

// Reminder sends every linked account the recipes it planned for a day.
type Reminder struct {
	sender   Sender
	accounts Accounts
	plans    Plans
	logger   *zap.Logger
}

// ReminderStats summarises one reminder run.
type ReminderStats struct {
	Accounts int
	Sent     int
	Skipped  int
	Failed   int
}

func NewReminder(sender Sender, accounts Accounts, plans Plans, logger *zap.Logger) *Reminder {
	return &Reminder{
		sender:   sender,
		accounts: accounts,
		plans:    plans,
		logger:   logger.Named("reminder"),
	}
}

// Send delivers the reminders for date. Accounts with nothing planned are
// skipped; a failed delivery is logged and does not stop the run.
func (r *Reminder) Send(ctx context.Context, date time.Time) (ReminderStats, error) {
	var stats ReminderStats

	linked, err := r.accounts.ListWithTelegram(ctx)
	if err != nil {
		return stats, err
	}
	items, err := r.plans.ListByDate(ctx, date)
	if err != nil {
		return stats, err
	}

	byAccount := make(map[string][]planner.PlanItem)
	for _, it := range items {
		byAccount[it.Plan.AccountID] = append(byAccount[it.Plan.AccountID], it)
	}

	stats.Accounts = len(linked)
	for _, a := range linked {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		planned := byAccount[a.UID]
		if len(planned) == 0 {
			stats.Skipped++
			continue
		}
		msg := tgbotapi.NewMessage(a.TelegramChatID, formatDay(date, planned))
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := r.sender.Send(msg); err != nil {
			stats.Failed++
			r.logger.Warn("failed to send reminder", zap.String("uid", a.UID), zap.Error(err))
			continue
		}
		stats.Sent++
	}

	r.logger.Info("reminders sent",
		zap.String("date", planner.DateKey(date)),
		zap.Int("accounts", stats.Accounts),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// formatDay renders the recipes of one day as a Markdown message.
func formatDay(date time.Time, items []planner.PlanItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s*\n\n", date.UTC().Format("Monday, 02 Jan"))
	if len(items) == 0 {
		sb.WriteString("_Nothing planned._\n")
		return sb.String()
	}

	total := 0
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s", i+1, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, it.Recipe.Name))
		if it.Recipe.TotalTime > 0 {
			fmt.Fprintf(&sb, " (%d mins)", it.Recipe.TotalTime)
		}
		sb.WriteString("\n")
		total += it.Recipe.TotalTime
	}
	if total > 0 {
		fmt.Fprintf(&sb, "\n⏱ *Total cooking:* %d mins\n", total)
	}
	return sb.String()
}
