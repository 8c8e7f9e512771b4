package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

// RequireManager allows payroll administrators only.
func RequireManager(next http.Handler) http.Handler {
	return requireActor(auth.Actor.RequireManage, next)
}

// RequireViewer allows any role that may read payroll data.
func RequireViewer(next http.Handler) http.Handler {
	return requireActor(auth.Actor.RequireView, next)
}

func requireActor(check func(auth.Actor) error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFromContext(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrMissingActor)
			return
		}
		if err := check(actor); err != nil {
			response.HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
