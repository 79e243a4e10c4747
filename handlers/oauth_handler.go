package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/oauth"
	"github.com/taskdeck/taskdeck/utils"
	"go.uber.org/zap"
)

const (
	// StateCookieName is the cookie name for OAuth state (CSRF)
	StateCookieName   = "oauth_state"
	stateCookieMaxAge = 600
)

// OAuthAuthorizeHandler starts the federated login flow: it generates a
// state value, stores it in a short-lived cookie and redirects the browser
// to the provider's consent page
func OAuthAuthorizeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := models.ParseProvider(chi.URLParam(r, "provider"))
		if err != nil {
			_ = utils.WriteNotFound(w, "UNSUPPORTED_PROVIDER", "unsupported identity provider")
			return
		}

		client, ok := deps.OAuthRegistry.Get(provider)
		if !ok {
			_ = utils.WriteNotFound(w, "UNSUPPORTED_PROVIDER", "unsupported identity provider")
			return
		}

		state, err := generateSecureState()
		if err != nil {
			deps.Logger.Error("failed to generate state", zap.Error(err))
			_ = utils.WriteInternalServerError(w, "failed to initiate login")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     StateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   stateCookieMaxAge,
			HttpOnly: true,
			Secure:   strings.HasPrefix(deps.Config.OAuth.RedirectBase, "https"),
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, client.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler finishes the federated login flow. It verifies the
// state, exchanges the code, reconciles the external subject onto a local
// account and redirects to the frontend with a freshly issued token. Any
// failure after the provider redirect lands on the frontend error page
// rather than a JSON response, because the caller here is a browser
// mid-redirect, not an API client.
func OAuthCallbackHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := models.ParseProvider(chi.URLParam(r, "provider"))
		if err != nil {
			_ = utils.WriteNotFound(w, "UNSUPPORTED_PROVIDER", "unsupported identity provider")
			return
		}

		client, ok := deps.OAuthRegistry.Get(provider)
		if !ok {
			_ = utils.WriteNotFound(w, "UNSUPPORTED_PROVIDER", "unsupported identity provider")
			return
		}

		failure := func(reason string, err error) {
			deps.Logger.Warn("federated login failed",
				zap.String("provider", string(provider)),
				zap.String("reason", reason),
				zap.Error(err))
			http.Redirect(w, r, deps.Config.OAuth.FrontendURL+"/login?error=true", http.StatusFound)
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			failure("missing code or state", nil)
			return
		}

		stateCookie, err := r.Cookie(StateCookieName)
		if err != nil || stateCookie.Value != state {
			failure("state mismatch", err)
			return
		}

		clearStateCookie(w, deps.Config.OAuth.RedirectBase)

		tok, err := client.Exchange(r.Context(), code)
		if err != nil {
			failure("code exchange failed", err)
			return
		}

		attrs, err := client.FetchUserInfo(r.Context(), tok)
		if err != nil {
			failure("user-info fetch failed", err)
			return
		}

		subject, err := oauth.Extract(provider, attrs)
		if err != nil {
			failure("claim extraction failed", err)
			return
		}

		account, err := deps.ReconcilerService.Reconcile(r.Context(), subject)
		if err != nil {
			failure("reconciliation failed", err)
			return
		}

		signed, err := deps.LoginService.IssueFor(account)
		if err != nil {
			failure("token issue failed", err)
			return
		}

		deps.Logger.Info("federated login succeeded",
			zap.String("provider", string(provider)),
			zap.String("account_id", account.ID.String()))

		target := fmt.Sprintf("%s/login/oauth2/code/%s?token=%s",
			deps.Config.OAuth.FrontendURL, provider, url.QueryEscape(signed))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func clearStateCookie(w http.ResponseWriter, redirectBase string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   strings.HasPrefix(redirectBase, "https"),
		SameSite: http.SameSiteLaxMode,
	})
}

func generateSecureState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
