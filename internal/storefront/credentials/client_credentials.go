package credentials

import (
	"context"
	"fmt"
	"net/http"

	"product-storefront/internal/storefront"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type ClientCredentialsConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	// Scopes requested for every registration unless RegistrationScopes
	// overrides them.
	Scopes             []string
	RegistrationScopes map[string][]string
	HTTPClient         *http.Client
}

// ClientCredentials obtains service tokens on the gateway's own behalf. All
// callers share the one service identity.
type ClientCredentials struct {
	cfg ClientCredentialsConfig
}

func NewClientCredentials(cfg ClientCredentialsConfig) *ClientCredentials {
	return &ClientCredentials{cfg: cfg}
}

func (c *ClientCredentials) PrincipalKey(storefront.Principal) string {
	return c.cfg.ClientID
}

func (c *ClientCredentials) Exchange(ctx context.Context, _ storefront.Principal, registration string) (storefront.Credential, error) {
	scopes, ok := c.cfg.RegistrationScopes[registration]
	if !ok {
		scopes = c.cfg.Scopes
	}
	conf := &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if c.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.cfg.HTTPClient)
	}

	token, err := conf.Token(ctx)
	if err != nil {
		return storefront.Credential{}, fmt.Errorf("%w: client credentials for %q: %w", storefront.ErrUnauthorized, registration, err)
	}

	return storefront.Credential{
		Token:        token.AccessToken,
		ExpiresAt:    token.Expiry,
		Principal:    c.cfg.ClientID,
		Registration: registration,
	}, nil
}
