package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// actorFromRequest returns the actor placed by middleware.AuthRequired.
func actorFromRequest(r *http.Request) (auth.Actor, error) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, auth.ErrMissingActor
	}
	return actor, nil
}

// periodFromRequest reads year and month from the path, falling back to the
// query string.
func periodFromRequest(r *http.Request) (int, int, error) {
	rawYear := chi.URLParam(r, "year")
	if rawYear == "" {
		rawYear = r.URL.Query().Get("year")
	}
	rawMonth := chi.URLParam(r, "month")
	if rawMonth == "" {
		rawMonth = r.URL.Query().Get("month")
	}

	var errs validator.ValidationErrors
	year, verr := validator.ParseInt("year", rawYear)
	if verr != nil {
		errs = append(errs, *verr)
	}
	month, verr := validator.ParseInt("month", rawMonth)
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return year, month, nil
}
