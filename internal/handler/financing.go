package handler

import (
	"bytes"
	"net/http"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/internal/export"
	"github.com/segyhp/clinic-billing/pkg/response"
)

type FinancingHandler struct {
	service FinancingService
}

func NewFinancingHandler(service FinancingService) *FinancingHandler {
	return &FinancingHandler{service: service}
}

func (h *FinancingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFinancingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	detail, err := h.service.CreateFinancing(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, detail)
}

func (h *FinancingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetFinancing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}

func (h *FinancingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListFinancings(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, page)
}

// ListByPatient serves /patients/{id}/financings.
func (h *FinancingHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	financings, err := h.service.ListFinancingsByPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, financings)
}

func (h *FinancingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	financing, err := h.service.CancelFinancing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, financing)
}

// ExportSchedule streams the installment schedule as an xlsx download.
func (h *FinancingHandler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetFinancing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	// render fully before writing headers so a failure can still answer 500
	buf := &bytes.Buffer{}
	if err := export.WriteSchedule(buf, detail); err != nil {
		response.InternalServerError(w, "Failed to render schedule")
		return
	}

	w.Header().Set("Content-Type", export.ScheduleContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.ScheduleFilename(detail))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
