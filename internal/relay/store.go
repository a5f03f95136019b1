// Package relay is the persistence boundary: a key-value store reachable via
// get and set, keyed by logical names. The extraction engine never blocks a
// scan on relay completion; consumers persist fire-and-forget.
package relay

import "context"

// Logical keys the consumers use.
const (
	// KeyMessages holds the persisted message history.
	KeyMessages = "messages"
	// KeyFavorites holds the user's favorited records.
	KeyFavorites = "favorites"
	// KeyThemePreference holds the UI theme preference.
	KeyThemePreference = "themePreference"
)

// Store is the persistence relay contract. Both operations are asynchronous
// request/response with no ordering guarantee across overlapping calls from
// different consumers. Missing keys are empty-string defaults, not errors.
type Store interface {
	// Get retrieves the values for the given keys.
	Get(ctx context.Context, keys []string) (map[string]string, error)
	// Set stores the given key-value pairs.
	Set(ctx context.Context, values map[string]string) error
}
