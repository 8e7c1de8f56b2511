package controllers

import (
	"context"
	"net/http"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/api/validators"
	"github.com/stocktakehq/stocktake-web/internal/authguard"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// AuthService is the slice of the gateway client the auth handlers use.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (gateway.Session, error)
	SignOut(ctx context.Context) error
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func viewOfUser(user inventory.User) userView {
	return userView{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}

// Login exchanges credentials for a gateway session. The guard picks the
// session change up through the auth event and populates the store.
func Login(auth AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := auth.SignInWithPassword(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user := authguard.CurrentUserFromSession(session)
		responses.WriteSuccess(w, map[string]any{"user": viewOfUser(user)})
	}
}

// Logout revokes the session. The guard clears the store on the event.
func Logout(auth AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.SignOut(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"signed_out": true})
	}
}

// SessionInfo reports the guard state and, when signed in, the operator.
func SessionInfo(guard *authguard.Guard, store StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"state": string(guard.State())}
		if user := store.CurrentUser(); user != nil {
			body["user"] = viewOfUser(*user)
		}
		responses.WriteSuccess(w, body)
	}
}
