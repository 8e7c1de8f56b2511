package middleware

import (
	"net/http"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/internal/authguard"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// UserSource answers who is signed in right now. *store.Store satisfies it.
type UserSource interface {
	CurrentUser() *inventory.User
}

// RequireSession rejects API calls without a signed-in operator and stamps
// the user id and role onto the request context.
func RequireSession(users UserSource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.CurrentUser()
			if user == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}

			ctx := WithUserID(r.Context(), user.ID)
			ctx = WithRole(ctx, string(user.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PageGuard applies the guard's redirect decisions to HTML page requests.
// API routes never sit behind it; they answer 401 instead.
func PageGuard(guard *authguard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if target, redirect := guard.RedirectFor(r.URL.Path); redirect {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
