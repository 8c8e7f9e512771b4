package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	GetTotals(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	aggregator attendance.Aggregator
}

func NewAttendanceHandler(aggregator attendance.Aggregator) AttendanceHandler {
	return &attendanceHandlerImpl{aggregator: aggregator}
}

// GetTotals returns the attendance summary of one employee for a pay cycle.
func (h *attendanceHandlerImpl) GetTotals(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	period, totals, err := h.aggregator.GetTotals(r.Context(), chi.URLParam(r, "employeeID"), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.TotalsResponse{Period: period, Totals: totals})
}
