// Package account stores user profiles and computes daily calorie targets.
package account

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown accounts.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidProfile wraps body-profile validation failures.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Account is a user's public profile.
type Account struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Avatar         string    `json:"avatar"`
	Introduction   string    `json:"introduction"`
	Link           string    `json:"link"`
	Slogan         string    `json:"slogan"`
	Quote          string    `json:"quote"`
	TelegramChatID int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
