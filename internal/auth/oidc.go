package auth

import (
	"agv-finance/internal/config"
	"agv-finance/internal/domain/employee"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Provider is the OIDC authorisation-code client for the identity provider.
type Provider struct {
	oauth    *oauth2.Config
	baseURL  string
	clientID string
	client   *http.Client
}

// NewProvider builds a client for cfg.Domain. A bare host is treated as https.
func NewProvider(cfg config.AuthConfig) *Provider {
	base := strings.TrimRight(cfg.Domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/authorize",
				TokenURL: base + "/oauth/token",
			},
		},
		baseURL:  base,
		clientID: cfg.ClientID,
		client:   http.DefaultClient,
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// UserInfo fetches the profile claims of the token's subject.
func (p *Provider) UserInfo(ctx context.Context, tok *oauth2.Token) (employee.Identity, error) {
	var id employee.Identity
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/userinfo", nil)
	if err != nil {
		return id, err
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return id, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return id, fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return id, fmt.Errorf("decode userinfo: %w", err)
	}
	return id, nil
}

// LogoutURL ends the provider session and sends the browser back to returnTo.
func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("returnTo", returnTo)
	q.Set("client_id", p.clientID)
	return p.baseURL + "/v2/logout?" + q.Encode()
}
