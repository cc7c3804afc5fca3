package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasteal/internal/database"
)

const selectAccounts = `
	SELECT uid, name, avatar, introduction, link, slogan, quote, telegram_chat_id, created_at
	FROM accounts`

// Repository is a database-backed repository for accounts.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get loads one account.
func (r *Repository) Get(ctx context.Context, uid string) (Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccounts+` WHERE uid = ?`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

// Upsert creates the account or updates its profile fields. The telegram
// link and creation time are left untouched on update.
func (r *Repository) Upsert(ctx context.Context, a *Account) error {
	if strings.TrimSpace(a.UID) == "" {
		return errors.New("account uid is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (uid, name, avatar, introduction, link, slogan, quote, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET
			name = excluded.name, avatar = excluded.avatar, introduction = excluded.introduction,
			link = excluded.link, slogan = excluded.slogan, quote = excluded.quote`,
		a.UID, a.Name, a.Avatar, a.Introduction, a.Link, a.Slogan, a.Quote, database.FormatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.UID, err)
	}
	return nil
}

// ListByIDs returns the accounts among uids that exist, in uid order.
func (r *Repository) ListByIDs(ctx context.Context, uids []string) ([]Account, error) {
	if len(uids) == 0 {
		return []Account{}, nil
	}
	args := make([]any, len(uids))
	for i, uid := range uids {
		args[i] = uid
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(uids)), ", ")
	rows, err := r.db.QueryContext(ctx, selectAccounts+` WHERE uid IN (`+ph+`) ORDER BY uid`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return scanAccounts(rows)
}

// LinkTelegram stores the chat id reminders are sent to. A zero id unlinks.
func (r *Repository) LinkTelegram(ctx context.Context, uid string, chatID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET telegram_chat_id = ? WHERE uid = ?`, chatID, uid)
	if err != nil {
		return fmt.Errorf("failed to link telegram for %s: %w", uid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithTelegram returns every account that linked a Telegram chat.
func (r *Repository) ListWithTelegram(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, selectAccounts+` WHERE telegram_chat_id != 0 ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list telegram accounts: %w", err)
	}
	return scanAccounts(rows)
}

// GetByTelegram finds the account linked to a Telegram chat.
func (r *Repository) GetByTelegram(ctx context.Context, chatID int64) (Account, error) {
	if chatID == 0 {
		return Account{}, ErrNotFound
	}
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccounts+` WHERE telegram_chat_id = ? ORDER BY uid LIMIT 1`, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (Account, error) {
	var (
		a       Account
		created string
	)
	err := s.Scan(&a.UID, &a.Name, &a.Avatar, &a.Introduction, &a.Link, &a.Slogan, &a.Quote, &a.TelegramChatID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, err
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	if a.CreatedAt, err = database.ParseTime(created); err != nil {
		return Account{}, err
	}
	return a, nil
}

func scanAccounts(rows *sql.Rows) ([]Account, error) {
	defer rows.Close()
	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
