// Package oauth wraps the authorization-code exchange with the supported
// external identity providers and normalizes their user-info payloads.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/taskdeck/taskdeck/config"
	"github.com/taskdeck/taskdeck/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Provider endpoints. Fixed per provider; only the client registration
// comes from configuration.
var (
	googleEndpoint = oauth2.Endpoint{
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	}
	kakaoEndpoint = oauth2.Endpoint{
		AuthURL:  "https://kauth.kakao.com/oauth/authorize",
		TokenURL: "https://kauth.kakao.com/oauth/token",
	}
	naverEndpoint = oauth2.Endpoint{
		AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
		TokenURL: "https://nid.naver.com/oauth2.0/token",
	}
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	kakaoUserInfoURL  = "https://kapi.kakao.com/v2/user/me"
	naverUserInfoURL  = "https://openapi.naver.com/v1/nid/me"
)

// Client performs the authorization-code flow against one provider
type Client struct {
	name        models.Provider
	conf        *oauth2.Config
	userInfoURL string
}

// Name returns the provider this client talks to
func (c *Client) Name() models.Provider {
	return c.name
}

// AuthCodeURL builds the provider's consent page URL carrying the state value
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange with %s failed: %w", c.name, err)
	}
	return tok, nil
}

// FetchUserInfo retrieves the raw user-info document with the access token
func (c *Client) FetchUserInfo(ctx context.Context, tok *oauth2.Token) (map[string]interface{}, error) {
	httpClient := c.conf.Client(ctx, tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user-info request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user-info request to %s failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user-info request to %s returned %d: %s", c.name, resp.StatusCode, body)
	}

	var attrs map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode %s user-info payload: %w", c.name, err)
	}
	return attrs, nil
}

// Registry holds the configured provider clients
type Registry struct {
	clients map[models.Provider]*Client
	logger  *zap.Logger
}

// NewRegistry builds clients for every provider with a configured client ID.
// Providers without credentials are left out and resolve as unsupported.
func NewRegistry(cfg config.OAuthConfig, logger *zap.Logger) *Registry {
	r := &Registry{
		clients: make(map[models.Provider]*Client),
		logger:  logger,
	}

	if cfg.Google.ClientID != "" {
		r.register(models.ProviderGoogle, cfg.Google, cfg, googleEndpoint, googleUserInfoURL,
			[]string{"openid", "profile", "email"})
	}
	if cfg.Kakao.ClientID != "" {
		r.register(models.ProviderKakao, cfg.Kakao, cfg, kakaoEndpoint, kakaoUserInfoURL,
			[]string{"profile_nickname", "account_email"})
	}
	if cfg.Naver.ClientID != "" {
		r.register(models.ProviderNaver, cfg.Naver, cfg, naverEndpoint, naverUserInfoURL, nil)
	}

	return r
}

func (r *Registry) register(name models.Provider, creds config.ProviderCredentials, cfg config.OAuthConfig, endpoint oauth2.Endpoint, userInfoURL string, scopes []string) {
	r.clients[name] = &Client{
		name: name,
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURI(string(name)),
			Scopes:       scopes,
		},
		userInfoURL: userInfoURL,
	}
	r.logger.Info("identity provider registered", zap.String("provider", string(name)))
}

// Get returns the client for a provider, or false when the provider is
// unknown or not configured
func (r *Registry) Get(provider models.Provider) (*Client, bool) {
	c, ok := r.clients[provider]
	return c, ok
}
