package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"inventory-api/internal/model"
)

type TokenVerifier interface {
	Verify(token string) (model.Claims, error)
}

type IdentityLoader interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

// Policy declares, per operation name, the roles allowed to perform it.
// Operations missing from the table only require authentication.
type Policy map[string][]model.Role

type contextKey string

const (
	claimsContextKey   contextKey = "auth_claims"
	identityContextKey contextKey = "auth_identity"
)

type AuthMiddleware struct {
	tokens TokenVerifier
	users  IdentityLoader
	policy Policy
}

func NewAuthMiddleware(tokens TokenVerifier, users IdentityLoader, policy Policy) *AuthMiddleware {
	if policy == nil {
		policy = Policy{}
	}
	return &AuthMiddleware{tokens: tokens, users: users, policy: policy}
}

// RequireAuth verifies the bearer token and reloads the identity it names on
// every request. Deleted identities are rejected even with an unexpired token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header", nil)
			return
		}

		token := strings.TrimSpace(header[7:])
		claims, err := m.tokens.Verify(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token", nil)
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.Subject)
		if errors.Is(err, model.ErrUserNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "identity no longer exists", nil)
			return
		}
		if err != nil {
			slog.Error("failed to load identity", "subject", claims.Subject, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error", nil)
			return
		}

		noteIdentity(r.Context(), user)
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = context.WithValue(ctx, identityContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize enforces the roles the policy declares for operation. It must run
// after RequireAuth.
func (m *AuthMiddleware) Authorize(operation string) func(http.Handler) http.Handler {
	roles := m.policy[operation]
	allowed := map[model.Role]struct{}{}
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
				return
			}

			if len(allowed) > 0 {
				if _, permitted := allowed[user.Role]; !permitted {
					writeJSONError(w, http.StatusForbidden, "FORBIDDEN", requiredRolesMessage(roles),
						map[string]any{"requiredRoles": roles})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(identityContextKey).(model.User)
	return user, ok
}

func ClaimsFromContext(ctx context.Context) (model.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(model.Claims)
	return claims, ok
}

func requiredRolesMessage(roles []model.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return "Role " + strings.Join(names, " or ") + " is required to perform this operation"
}
