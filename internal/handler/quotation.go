package handler

import (
	"net/http"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/pkg/response"
)

type QuotationHandler struct {
	service QuotationService
}

func NewQuotationHandler(service QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.QuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quotation, err := h.service.CreateQuotation(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, quotation)
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	quotation, err := h.service.GetQuotation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quotation)
}

func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.QuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quotation, err := h.service.UpdateQuotation(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quotation)
}

func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteQuotation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.QuotationStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quotation, err := h.service.UpdateQuotationStatus(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quotation)
}

func (h *QuotationHandler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.service.ListAcceptedQuotations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quotations)
}

// ListByPatient serves /patients/{id}/quotations.
func (h *QuotationHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	quotations, err := h.service.ListQuotationsByPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quotations)
}
