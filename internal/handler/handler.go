package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/clinic-billing/internal/domain"
	customError "github.com/segyhp/clinic-billing/pkg/errors"
	"github.com/segyhp/clinic-billing/pkg/response"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *domain.PatientRequest) (*domain.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *domain.PatientRequest) (*domain.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Patient], error)
	ListActivePatients(ctx context.Context) ([]*domain.Patient, error)
}

type QuotationService interface {
	CreateQuotation(ctx context.Context, req *domain.QuotationRequest) (*domain.Quotation, error)
	GetQuotation(ctx context.Context, id uuid.UUID) (*domain.Quotation, error)
	UpdateQuotation(ctx context.Context, id uuid.UUID, req *domain.QuotationRequest) (*domain.Quotation, error)
	DeleteQuotation(ctx context.Context, id uuid.UUID) error
	ListQuotationsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error)
	ListAcceptedQuotations(ctx context.Context) ([]*domain.Quotation, error)
	UpdateQuotationStatus(ctx context.Context, id uuid.UUID, req *domain.QuotationStatusRequest) (*domain.Quotation, error)
}

type FinancingService interface {
	CreateFinancing(ctx context.Context, req *domain.CreateFinancingRequest) (*domain.FinancingDetail, error)
	GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, error)
	ListFinancings(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Financing], error)
	ListFinancingsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error)
	CancelFinancing(ctx context.Context, id uuid.UUID) (*domain.Financing, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.PaymentView, error)
	ListPayments(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.PaymentView], error)
	ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.PaymentView, error)
	RevertPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// writeError maps a service error onto its HTTP status. Internal errors
// were logged by the service and only the generic message is sent.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch customError.KindOf(err) {
	case customError.KindValidation:
		status = http.StatusBadRequest
	case customError.KindNotFound:
		status = http.StatusNotFound
	case customError.KindConflict:
		status = http.StatusConflict
	}

	code := "INTERNAL_ERROR"
	var be *customError.BusinessError
	if errors.As(err, &be) {
		code = be.Code
	}

	response.Error(w, status, code, customError.MessageOf(err))
}

// pathID parses the {name} route variable as a UUID, answering 400 when it
// is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads the request body into dst, answering 400 on bad JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pageRequest reads ?page=&page_size=. Missing or malformed values are left
// at zero for the service to default.
func pageRequest(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return domain.PageRequest{Page: page, PageSize: size}
}
