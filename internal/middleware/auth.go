package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront-api/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID  int64
	Email   string
	Name    string
	IsAdmin bool
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}

// UserAuth verifies the bearer token and resolves the user against the
// database, so a deleted account cannot keep using an unexpired token.
func UserAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return authHandler(db, jwtSecret, false)
}

// AdminAuth additionally requires the administrator flag. Report routes and
// order administration sit behind it.
func AdminAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return authHandler(db, jwtSecret, true)
}

func authHandler(db *pgxpool.Pool, jwtSecret string, adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			userID, err := parseInt64(claims.UserID)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			authCtx, err := ResolveUser(r.Context(), db, userID)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "User not found")
				return
			}

			if adminOnly && !authCtx.IsAdmin {
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}

// ResolveUser is shared with the websocket endpoint, which authenticates
// from a query token instead of the Authorization header.
func ResolveUser(ctx context.Context, db *pgxpool.Pool, userID int64) (*AuthContext, error) {
	authCtx := &AuthContext{UserID: userID}
	err := db.QueryRow(ctx,
		`select name, email, is_admin from users where id = $1`,
		userID,
	).Scan(&authCtx.Name, &authCtx.Email, &authCtx.IsAdmin)
	if err != nil {
		return nil, err
	}
	return authCtx, nil
}

func parseInt64(value string) (int64, error) {
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}
