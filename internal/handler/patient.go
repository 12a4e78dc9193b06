package handler

import (
	"net/http"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/pkg/response"
)

type PatientHandler struct {
	service PatientService
}

func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patient, err := h.service.CreatePatient(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, patient)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, patient)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.PatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patient, err := h.service.UpdatePatient(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, patient)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPatients(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, page)
}

func (h *PatientHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListActivePatients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, patients)
}
