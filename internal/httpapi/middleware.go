package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/domain"
	"github.com/engineermuzamil/modernstore/internal/repository"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate verifies the bearer token and resolves the acting identity.
// The role comes from the user record, not the token, so a role change takes
// effect on the next request.
func Authenticate(tokens *auth.TokenIssuer, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "access token required")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			identity := domain.Identity{UserID: user.ID, Role: user.Role}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
