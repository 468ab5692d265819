package providers

import "context"

// AuthProvider verifies the ID tokens clients present to the API.
type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

type TokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// DisplayName derives a public name from the claims without exposing the full email.
func (c *TokenClaims) DisplayName() string {
	for i, r := range c.Email {
		if r == '@' {
			if i == 0 {
				break
			}
			return c.Email[:i]
		}
	}
	if len(c.UID) > 8 {
		return "player-" + c.UID[:8]
	}
	return "player-" + c.UID
}
