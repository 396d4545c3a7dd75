package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
)

// contextKey is unexported so only this package can read or write the
// authenticated user in a request context.
type contextKey string

const userKey contextKey = "user"

// UserLookup resolves the user named by a token. The store satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// Guard resolves the caller's identity from an "Authorization: Bearer" header.
//
// RequireUser rejects the request with 401 when there is no usable identity.
// OptionalUser never rejects for identity reasons: a missing header, a bad
// or expired token, missing claims or an unknown user all mean "anonymous",
// and the handler decides what an anonymous caller may see.
//
// A store failure during the user lookup is not an identity problem and
// answers 500 in both modes.
type Guard struct {
	tokens *TokenService
	users  UserLookup
	logger *slog.Logger
}

// NewGuard creates a Guard that verifies tokens and loads their users.
func NewGuard(tokens *TokenService, users UserLookup, logger *slog.Logger) *Guard {
	return &Guard{tokens: tokens, users: users, logger: logger}
}

// RequireUser is a middleware for routes that always need an identity.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		case errors.Is(err, errNoIdentity):
			writeUnauthorized(w)
		default:
			g.logger.Error("resolving request identity", slog.String("error", err.Error()))
			writeAuthJSON(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
		}
	})
}

// OptionalUser is a middleware for routes that serve anonymous callers too.
func (g *Guard) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		switch {
		case err == nil:
			r = r.WithContext(WithUser(r.Context(), user))
		case errors.Is(err, errNoIdentity):
			// anonymous
		default:
			g.logger.Error("resolving request identity", slog.String("error", err.Error()))
			writeAuthJSON(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errNoIdentity = errors.New("auth: no identity")

// resolve returns the user for the request's bearer token, errNoIdentity
// for every credential problem, or a store error.
func (g *Guard) resolve(r *http.Request) (*model.User, error) {
	raw, ok := BearerToken(r)
	if !ok {
		return nil, errNoIdentity
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, errNoIdentity
	}

	user, err := g.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errNoIdentity
		}
		return nil, err
	}
	return user, nil
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	writeAuthJSON(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
}

// writeAuthJSON mirrors the handler package's error shape. It lives here
// because handler imports auth.
func writeAuthJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
