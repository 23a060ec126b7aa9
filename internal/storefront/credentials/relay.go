package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"product-storefront/internal/storefront"

	"github.com/golang-jwt/jwt/v5"
)

// Relay forwards the caller's own bearer token. The token is not verified
// here; the downstream services verify it.
type Relay struct {
	parser *jwt.Parser
}

func NewRelay() *Relay {
	return &Relay{parser: jwt.NewParser()}
}

// PrincipalKey includes a token fingerprint so a re-authenticated caller never
// gets a credential cached for an earlier token.
func (r *Relay) PrincipalKey(principal storefront.Principal) string {
	if principal.Token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(principal.Token))
	return principal.Subject + "#" + hex.EncodeToString(sum[:8])
}

func (r *Relay) Exchange(_ context.Context, principal storefront.Principal, registration string) (storefront.Credential, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := r.parser.ParseUnverified(principal.Token, &claims); err != nil {
		return storefront.Credential{}, fmt.Errorf("%w: parse relayed token: %w", storefront.ErrUnauthorized, err)
	}

	cred := storefront.Credential{
		Token:        principal.Token,
		Principal:    principal.Subject,
		Registration: registration,
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}
