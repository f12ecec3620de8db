package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/usecase"
)

// ActorHeader carries the id of the authenticated user, set by the upstream auth proxy.
const ActorHeader = "X-Actor-ID"

type actorKey struct{}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

func WithActor(ctx context.Context, actor usecase.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (usecase.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(usecase.Actor)
	return actor, ok
}

// Actor resolves the request's user and stores it in the context. Unknown users get 401.
func Actor(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(ActorHeader))
			if id == "" {
				unauthorized(w, "missing "+ActorHeader+" header")
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				logrus.WithError(err).WithField("user_id", id).Error("❌ Failed to resolve actor")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]any{"error": "failed to resolve user", "retryable": true})
				return
			}
			if user == nil {
				unauthorized(w, "unknown user")
				return
			}

			actor := usecase.Actor{UserID: user.ID, RoleID: user.RoleID, Name: user.FullName(), Email: user.Email}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
