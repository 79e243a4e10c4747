package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/token"
	"github.com/taskdeck/taskdeck/utils"
	"go.uber.org/zap"
)

// TokenVerifier defines the interface for verifying session tokens
type TokenVerifier interface {
	// Verify parses and validates a token string
	Verify(tokenString string) (*token.Claims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	verifier  TokenVerifier
	allowList []string
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. Requests whose path starts
// with one of the allowList prefixes bypass token handling entirely.
func NewAuthMiddleware(verifier TokenVerifier, allowList []string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		allowList: allowList,
		logger:    logger,
	}
}

// Authenticate inspects the Authorization header on every request. It never
// rejects: a valid token attaches a principal to the context, a failed
// verification attaches the failure, and an absent or non-Bearer header
// attaches nothing. Rejection is the authorization layer's job, so routes
// that serve both anonymous and authenticated callers stay possible.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.allowListed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractBearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			m.logger.Debug("token verification failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			next.ServeHTTP(w, r.WithContext(WithAuthError(r.Context(), err)))
			return
		}

		principal := &Principal{
			ID:          claims.SubjectID,
			DisplayName: claims.DisplayName,
			Email:       claims.Email,
			Role:        claims.Role,
		}

		m.logger.Debug("authentication successful",
			zap.String("path", r.URL.Path),
			zap.String("subject", principal.ID.String()))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequirePrincipal is a middleware that rejects unauthenticated requests.
// The response code distinguishes an absent token from an invalid or
// expired one.
func (m *AuthMiddleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if GetPrincipalFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if err := GetAuthErrorFromContext(ctx); err != nil {
			code := "INVALID_TOKEN"
			message := "invalid authentication token"
			if errors.Is(err, token.ErrExpired) {
				code = "TOKEN_EXPIRED"
				message = "authentication token expired"
			}
			m.logger.Warn("rejected request with bad token",
				zap.String("path", r.URL.Path),
				zap.String("code", code))
			_ = utils.WriteUnauthorized(w, code, message)
			return
		}

		m.logger.Debug("rejected unauthenticated request",
			zap.String("path", r.URL.Path))
		_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
	})
}

// RequireRole is a middleware that requires the principal to hold a role.
// It must run after RequirePrincipal.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r.Context())
			if principal == nil {
				_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
				return
			}

			if !principal.HasRole(role) {
				m.logger.Warn("insufficient role",
					zap.String("path", r.URL.Path),
					zap.String("required_role", role),
					zap.String("subject", principal.ID.String()))
				_ = utils.WriteForbidden(w, "ACCESS_DENIED", "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) allowListed(path string) bool {
	for _, prefix := range m.allowList {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractBearerToken extracts the Bearer token from the Authorization
// header. Any other scheme, or a header with no token part, yields the
// empty string and the request counts as anonymous.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
