package session

import (
	"context"
	"errors"

	"sibubur/terminal/internal/domain"
)

// ErrAbsent means no usable session exists: the keys were never written,
// were cleared, or hold data that no longer deserializes. Storage failures
// collapse into ErrAbsent on the read path so callers only ever see
// "logged in" or "not logged in".
var ErrAbsent = errors.New("session absent")

type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// PrintSettings controls the auto-print behavior of the receipt
// collaborators. Both default to enabled.
type PrintSettings struct {
	AutoPrintKitchen  bool `json:"autoPrintKitchen"`
	AutoPrintCustomer bool `json:"autoPrintCustomer"`
}

func DefaultPrintSettings() PrintSettings {
	return PrintSettings{AutoPrintKitchen: true, AutoPrintCustomer: true}
}

// Store persists the terminal's local key-value state: the bearer token,
// the cached user, print preferences, and the optional lock PIN hash.
type Store interface {
	// SaveSession persists token and user. On failure the caller must treat
	// the terminal as not logged in.
	SaveSession(ctx context.Context, token string, user domain.User) error
	// LoadSession returns ErrAbsent when either entry is missing or corrupt.
	LoadSession(ctx context.Context) (Session, error)
	// ClearSession removes both entries and is idempotent.
	ClearSession(ctx context.Context) error

	SavePrintSettings(ctx context.Context, settings PrintSettings) error
	// LoadPrintSettings falls back to defaults when absent or unreadable.
	LoadPrintSettings(ctx context.Context) (PrintSettings, error)

	// Lock PIN state is terminal-level and survives ClearSession.
	SaveLockPIN(ctx context.Context, hash string) error
	LoadLockPIN(ctx context.Context) (string, error)
}

const (
	keyToken         = "token"
	keyUser          = "user"
	keyPrintSettings = "print-settings"
	keyLockPIN       = "lock-pin"
)
