package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenClaims_DisplayName(t *testing.T) {
	tests := []struct {
		name   string
		claims TokenClaims
		want   string
	}{
		{name: "email local part", claims: TokenClaims{UID: "abc", Email: "alice@example.com"}, want: "alice"},
		{name: "no email", claims: TokenClaims{UID: "0123456789abcdef"}, want: "player-01234567"},
		{name: "short uid", claims: TokenClaims{UID: "abc"}, want: "player-abc"},
		{name: "malformed email", claims: TokenClaims{UID: "abc", Email: "@example.com"}, want: "player-abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.DisplayName())
		})
	}
}
