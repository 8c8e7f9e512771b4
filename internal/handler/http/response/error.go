package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingActor),
		errors.Is(err, auth.ErrUnknownSubject):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, "Payroll access denied for this role")

	// Not found must be checked before the upstream wrapper that carries it
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrCycleNotFound):
		NotFound(w, "Payroll cycle not found")
	case errors.Is(err, attendance.ErrInvalidPeriod):
		BadRequest(w, "Invalid pay period", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrUpstreamFetch):
		BadGateway(w, "Could not load employee, attendance or history data. Nothing was changed, please retry")
	case errors.Is(err, payroll.ErrComputationInconsistency):
		InternalServerError(w, "Payroll result was incomplete and has been discarded")
	case errors.Is(err, payroll.ErrPersistence):
		InternalServerError(w, "Payroll was computed but not saved")
	case errors.Is(err, payroll.ErrNothingToFinalize):
		BadRequest(w, "Preview the payroll before finalizing", nil)
	case errors.Is(err, payroll.ErrUnsupportedFormat):
		BadRequest(w, "Unsupported payslip format", nil)
	case errors.Is(err, payroll.ErrPDFUnavailable):
		NotImplemented(w, "PDF payslips are not available on this server")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
