package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PayrollHandler interface {
	// Computation
	Preview(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)

	// History
	ListHistory(w http.ResponseWriter, r *http.Request)
	GetCycle(w http.ResponseWriter, r *http.Request)

	// Payslips
	ExportPayslip(w http.ResponseWriter, r *http.Request)
	ExportCyclePayslip(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// Subscriber is the part of sse.Hub the stream endpoint needs.
type Subscriber interface {
	Subscribe(topic string) (<-chan sse.Event, func())
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	payslipService payroll.PayslipService
	jwtService     jwt.Service
	events         Subscriber
	keepalive      time.Duration
}

func NewPayrollHandler(payrollService payroll.PayrollService, payslipService payroll.PayslipService, jwtService jwt.Service, events Subscriber) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		payslipService: payslipService,
		jwtService:     jwtService,
		events:         events,
		keepalive:      30 * time.Second,
	}
}

// ========== COMPUTATION ==========

func (h *payrollHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	h.compute(w, r, false)
}

func (h *payrollHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	h.compute(w, r, true)
}

func (h *payrollHandlerImpl) compute(w http.ResponseWriter, r *http.Request, finalize bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req, ok := decodeComputeRequest(w, r)
	if !ok {
		return
	}
	req.Finalize = finalize

	result, err := h.payrollService.Compute(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := payroll.ToComputeResponse(result)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if finalize {
		response.SuccessWithMessage(w, "Payroll finalized", resp)
		return
	}
	response.Success(w, resp)
}

func decodeComputeRequest(w http.ResponseWriter, r *http.Request) (payroll.ComputeRequest, bool) {
	var req payroll.ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return payroll.ComputeRequest{}, false
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	return req, true
}

// ========== HISTORY ==========

func (h *payrollHandlerImpl) ListHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.payrollService.ListCycles(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := payroll.ToHistoryResponse(records)
	if resp.Message != "" {
		response.SuccessWithMessage(w, resp.Message, resp)
		return
	}
	response.Success(w, resp)
}

// GetCycle recomputes a finalized cycle in preview mode. An optional
// ?incentive= overrides the saved incentive.
func (h *payrollHandlerImpl) GetCycle(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year, month, err := periodFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var incentive *decimal.Decimal
	if raw := r.URL.Query().Get("incentive"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			response.HandleError(w, validator.ValidationErrors{{Field: "incentive", Message: "must be a number"}})
			return
		}
		incentive = &v
	}

	result, err := h.payrollService.LoadCycleDetail(r.Context(), actor, chi.URLParam(r, "employeeID"), year, month, incentive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := payroll.ToComputeResponse(result)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ExportPayslip(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	format, err := payroll.ParsePayslipFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req, ok := decodeComputeRequest(w, r)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("finalize"); raw != "" {
		finalize, err := strconv.ParseBool(raw)
		if err != nil {
			response.HandleError(w, validator.ValidationErrors{{Field: "finalize", Message: "must be a boolean"}})
			return
		}
		req.Finalize = finalize
	}

	artifact, err := h.payslipService.Export(r.Context(), actor, req, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func (h *payrollHandlerImpl) ExportCyclePayslip(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	format, err := payroll.ParsePayslipFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year, month, err := periodFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	artifact, err := h.payslipService.ExportCycle(r.Context(), actor, chi.URLParam(r, "employeeID"), year, month, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeArtifact(w, artifact)
}

func writeArtifact(w http.ResponseWriter, artifact payroll.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Body)))
	if artifact.Path != "" {
		w.Header().Set("X-Payslip-Path", artifact.Path)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Body)
}

// ========== SSE ==========

// GetSSEToken issues a short-lived token for the events stream.
func (h *payrollHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(actor)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes payroll.finalized events for one employee.
func (h *payrollHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Token comes from the query string: EventSource cannot set headers
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	actor, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := actor.RequireView(); err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !validator.IsValidEmployeeID(employeeID) {
		response.HandleError(w, validator.ValidationErrors{{Field: "employee_id", Message: "has an invalid format"}})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.events.Subscribe(employeeID)
	defer cleanup()

	writeEvent(w, "connected", map[string]string{"status": "connected", "employeeId": employeeID})
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, event.Name, event.Data)
			flusher.Flush()

		case <-keepalive.C:
			writeEvent(w, "ping", map[string]int64{"timestamp": time.Now().Unix()})
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}
