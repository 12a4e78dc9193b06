package handler

import (
	"net/http"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/pkg/response"
)

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Create registers a payment. The response reports how much of it was
// applied to installments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPayments(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, page)
}

// ListByPatient serves /patients/{id}/payments.
func (h *PaymentHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.service.ListPaymentsByPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *PaymentHandler) Revert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.RevertPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payment)
}
