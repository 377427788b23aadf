package prefs

import "context"

// Theme is the persisted client presentation state. Keys mirror the ones
// the frontend stores.
type Theme struct {
	PrimaryColor string `json:"primary-color"`
	BodyFont     string `json:"body-font"`
	FontSize     string `json:"font-size"`
	DarkMode     bool   `json:"dark-mode"`
}

// Defaults returns the documented default theme, restored on reset.
func Defaults() Theme {
	return Theme{
		PrimaryColor: "#7c3aed",
		BodyFont:     "Inter",
		FontSize:     "16px",
		DarkMode:     false,
	}
}

// Store persists one theme per user. Get returns the defaults when the
// user has never saved a theme.
type Store interface {
	Get(ctx context.Context, userID int64) (Theme, error)
	Set(ctx context.Context, userID int64, theme Theme) error
	Reset(ctx context.Context, userID int64) error
}
