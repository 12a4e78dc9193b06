package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/clinic-billing/internal/domain"
)

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) CreatePatient(ctx context.Context, req *domain.PatientRequest) (*domain.Patient, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) UpdatePatient(ctx context.Context, id uuid.UUID, req *domain.PatientRequest) (*domain.Patient, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPatientService) ListPatients(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Patient], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Patient]), args.Error(1)
}

func (m *MockPatientService) ListActivePatients(ctx context.Context) ([]*domain.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Patient), args.Error(1)
}

type MockQuotationService struct {
	mock.Mock
}

func (m *MockQuotationService) CreateQuotation(ctx context.Context, req *domain.QuotationRequest) (*domain.Quotation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationService) GetQuotation(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationService) UpdateQuotation(ctx context.Context, id uuid.UUID, req *domain.QuotationRequest) (*domain.Quotation, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationService) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuotationService) ListQuotationsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quotation), args.Error(1)
}

func (m *MockQuotationService) ListAcceptedQuotations(ctx context.Context) ([]*domain.Quotation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quotation), args.Error(1)
}

func (m *MockQuotationService) UpdateQuotationStatus(ctx context.Context, id uuid.UUID, req *domain.QuotationStatusRequest) (*domain.Quotation, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

type MockFinancingService struct {
	mock.Mock
}

func (m *MockFinancingService) CreateFinancing(ctx context.Context, req *domain.CreateFinancingRequest) (*domain.FinancingDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancingDetail), args.Error(1)
}

func (m *MockFinancingService) GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancingDetail), args.Error(1)
}

func (m *MockFinancingService) ListFinancings(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Financing], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Financing]), args.Error(1)
}

func (m *MockFinancingService) ListFinancingsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Financing), args.Error(1)
}

func (m *MockFinancingService) CancelFinancing(ctx context.Context, id uuid.UUID) (*domain.Financing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Financing), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePaymentResponse), args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.PaymentView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentView), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.PaymentView], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.PaymentView]), args.Error(1)
}

func (m *MockPaymentService) ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.PaymentView, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentView), args.Error(1)
}

func (m *MockPaymentService) RevertPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
