package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tasteal/internal/account"
	"tasteal/internal/clipper"
)

const helpText = "👋 *Tasteal bot*\n\n" +
	"/link <token> connect this chat to your account\n" +
	"/unlink stop reminders\n" +
	"/today and /tomorrow show your plan\n" +
	"Send a recipe URL to clip it."

// SecretTokenHeader carries the secret set with setWebhook on every update
// Telegram delivers.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// TokenVerifier turns an access token into an account uid.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Clipper extracts recipe drafts from web pages.
type Clipper interface {
	ClipURL(ctx context.Context, url string) (*clipper.Draft, error)
}

// Bot answers webhook updates: account linking, plan lookups and clipping.
type Bot struct {
	api      Sender
	verifier TokenVerifier
	accounts Accounts
	plans    Plans
	clipper  Clipper
	secret   string
	logger   *zap.Logger
	now      func() time.Time
}

// NewBot wires a Bot. clip may be nil, which disables URL clipping.
func NewBot(api Sender, verifier TokenVerifier, accounts Accounts, plans Plans, clip Clipper, logger *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		verifier: verifier,
		accounts: accounts,
		plans:    plans,
		clipper:  clip,
		logger:   logger.Named("telegram"),
		now:      time.Now,
	}
}

// SetWebhookSecret sets the secret updates must carry in SecretTokenHeader.
// Until it is set every webhook request is rejected.
func (b *Bot) SetWebhookSecret(secret string) {
	b.secret = secret
}

// ServeHTTP checks the secret token, decodes a webhook update and handles it
// before replying 200.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(SecretTokenHeader)
	if b.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(b.secret)) != 1 {
		b.logger.Warn("rejected webhook request without a valid secret token", zap.String("remote", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

// HandleUpdate processes one update. Non-message updates are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleClip(ctx, msg.Chat.ID, text)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "link":
		b.handleLink(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "unlink":
		a, ok := b.linkedAccount(ctx, chatID)
		if !ok {
			return
		}
		if err := b.accounts.LinkTelegram(ctx, a.UID, 0); err != nil {
			b.fail(chatID, "unlinking", err)
			return
		}
		b.reply(chatID, "🔕 Reminders stopped.")
	case "today":
		b.handleDay(ctx, chatID, b.now())
	case "tomorrow":
		b.handleDay(ctx, chatID, b.now().AddDate(0, 0, 1))
	default:
		b.reply(chatID, helpText)
	}
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, token string) {
	if token == "" {
		b.reply(chatID, "Usage: /link <token>")
		return
	}
	uid, err := b.verifier.Verify(token)
	if err != nil {
		b.logger.Info("rejected link token", zap.Int64("chat_id", chatID), zap.Error(err))
		b.reply(chatID, "⛔ That token is not valid.")
		return
	}
	if err := b.accounts.LinkTelegram(ctx, uid, chatID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			b.reply(chatID, "⛔ No account for that token.")
			return
		}
		b.fail(chatID, "linking", err)
		return
	}
	b.logger.Info("linked telegram chat", zap.String("uid", uid), zap.Int64("chat_id", chatID))
	b.reply(chatID, "✅ Linked. You will get your daily plan here.")
}

func (b *Bot) handleDay(ctx context.Context, chatID int64, day time.Time) {
	a, ok := b.linkedAccount(ctx, chatID)
	if !ok {
		return
	}
	items, err := b.plans.ListByAccountBetween(ctx, a.UID, day, day)
	if err != nil {
		b.fail(chatID, "loading your plan", err)
		return
	}
	b.reply(chatID, formatDay(day, items))
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	if b.clipper == nil {
		b.reply(chatID, "Clipping is not enabled.")
		return
	}
	if _, ok := b.linkedAccount(ctx, chatID); !ok {
		return
	}
	draft, err := b.clipper.ClipURL(ctx, url)
	if err != nil {
		b.fail(chatID, "clipping recipe", err)
		return
	}
	b.reply(chatID, formatDraft(draft))
}

// linkedAccount resolves the chat's account, telling the user how to link
// when there is none.
func (b *Bot) linkedAccount(ctx context.Context, chatID int64) (account.Account, bool) {
	a, err := b.accounts.GetByTelegram(ctx, chatID)
	if errors.Is(err, account.ErrNotFound) {
		b.reply(chatID, "This chat is not linked yet. Use /link <token>.")
		return account.Account{}, false
	}
	if err != nil {
		b.fail(chatID, "loading your account", err)
		return account.Account{}, false
	}
	return a, true
}

func (b *Bot) fail(chatID int64, action string, err error) {
	b.logger.Error("bot request failed", zap.String("action", action), zap.Int64("chat_id", chatID), zap.Error(err))
	b.reply(chatID, fmt.Sprintf("❌ Error %s.", action))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func formatDraft(d *clipper.Draft) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✂️ *%s*\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, d.Name))
	fmt.Fprintf(&sb, "Serves %d", d.ServingSize)
	if d.TotalTime > 0 {
		fmt.Fprintf(&sb, ", %d mins", d.TotalTime)
	}
	sb.WriteString("\n\n🛒 *Ingredients*\n")
	for _, line := range d.Ingredients {
		fmt.Fprintf(&sb, "• %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, line))
	}
	fmt.Fprintf(&sb, "\n%d steps. Open Tasteal to save it.", len(d.Directions))
	return sb.String()
}
