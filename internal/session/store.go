// Package session persists the signed-in talent between runs and exposes it
// to the rest of the client through an explicit Session value.
package session

import "context"

const (
	KeyUser        = "user"
	KeyTalent      = "talent"
	KeyProfileMode = "profile_mode"
)

// Keys lists every key the session owns.
var Keys = []string{KeyUser, KeyTalent, KeyProfileMode}

// Store is a flat string key-value store. Get reports ok=false for a
// missing key; Remove ignores missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
