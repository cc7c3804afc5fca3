package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tasteal/internal/account"
	"tasteal/internal/auth"
	"tasteal/internal/cart"
	"tasteal/internal/catalog"
	"tasteal/internal/chat"
	"tasteal/internal/clipper"
	"tasteal/internal/config"
	"tasteal/internal/database"
	"tasteal/internal/ghost"
	"tasteal/internal/llm"
	"tasteal/internal/metrics"
	"tasteal/internal/pantry"
	"tasteal/internal/planner"
	"tasteal/internal/recipe"
	"tasteal/internal/storage"
	"tasteal/internal/telegram"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 30 * 24 * time.Hour

// ErrGhostDisabled is returned when the Ghost import source is not configured.
var ErrGhostDisabled = errors.New("ghost import is not configured")

// App holds the application's dependencies.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.DB

	Accounts *account.Repository
	Recipes  *recipe.Repository
	Cache    *recipe.Cache
	Catalog  *catalog.Repository
	Carts    *cart.Repository
	Pantry   *pantry.Repository
	Plans    *planner.Repository
	Planner  *planner.Service
	Chat     *chat.Service
	Images   *storage.ImageStore
	Metrics  *metrics.Store
	Issuer   *auth.Issuer
	Clipper  *clipper.Clipper
	Importer *Importer

	closers []llm.Closer
}

// New opens the database, runs migrations and wires every component. The
// clipper's model is Gemini, or Groq when only a Groq key is configured;
// without either it relies on structured page data alone.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	images, err := storage.NewImageStore(cfg.ImageDir, cfg.PublicBaseURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Accounts: account.NewRepository(db.SQL),
		Recipes:  recipe.NewRepository(db.SQL),
		Catalog:  catalog.NewRepository(db.SQL),
		Carts:    cart.NewRepository(db.SQL),
		Pantry:   pantry.NewRepository(db.SQL),
		Plans:    planner.NewRepository(db.SQL),
		Images:   images,
		Metrics:  metrics.NewStore(db.SQL),
		Issuer:   auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, TokenTTL),
	}
	a.Cache = recipe.NewCache(a.Recipes)
	a.Planner = planner.NewService(a.Plans, a.Cache, logger)
	a.Chat = chat.NewService(chat.NewRepository(db.SQL), images, logger)

	var textGen llm.TextGenerator
	switch {
	case cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.closers = append(a.closers, gemini)
		textGen = llm.NewRecordedGenerator(gemini, "clipper", a.Metrics, logger)
	case cfg.GroqAPIKey != "":
		textGen = llm.NewRecordedGenerator(llm.NewGroqClient(cfg), "clipper", a.Metrics, logger)
	default:
		logger.Info("no LLM key set, clipping uses structured data only")
	}
	a.Clipper = clipper.NewClipper(textGen, logger)
	a.Importer = NewImporter(a.Recipes, a.Catalog, logger)

	return a, nil
}

// Ghost returns a Content API client, or ErrGhostDisabled.
func (a *App) Ghost() (ghost.Client, error) {
	if !a.Config.GhostEnabled() {
		return nil, ErrGhostDisabled
	}
	return ghost.NewClient(a.Config), nil
}

// Telegram connects to the Bot API and builds the bot and reminder. It
// returns nil values when no bot token is configured.
func (a *App) Telegram() (*telegram.Bot, *telegram.Reminder, error) {
	if a.Config.TelegramBotToken == "" {
		return nil, nil, nil
	}
	api, err := telegram.NewBotAPI(a.Config.TelegramBotToken)
	if err != nil {
		return nil, nil, err
	}
	a.Logger.Info("authorized on telegram", zap.String("bot", api.Self.UserName))

	bot := telegram.NewBot(api, a.Issuer, a.Accounts, a.Plans, a.Clipper, a.Logger)
	bot.SetWebhookSecret(a.Config.TelegramWebhookSecret)
	return bot, telegram.NewReminder(api, a.Accounts, a.Plans, a.Logger), nil
}

// Close releases the LLM clients and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
