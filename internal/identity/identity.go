// Package identity is the boundary to the account system. The match engine
// only ever needs one thing from it: a display name for a player id.
package identity

import "context"

type Resolver interface {
	DisplayName(ctx context.Context, playerID string) (string, error)
}

// Static is the fallback resolver used when no account service is wired in.
type Static struct{}

func (Static) DisplayName(_ context.Context, playerID string) (string, error) {
	return Fallback(playerID), nil
}

// Fallback derives a short readable name from a player id. Truncation is by
// rune so a multibyte id never yields a broken name.
func Fallback(playerID string) string {
	tag := []rune(playerID)
	if len(tag) > 8 {
		tag = tag[:8]
	}
	return "Captain " + string(tag)
}
