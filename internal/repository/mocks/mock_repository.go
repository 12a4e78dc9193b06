package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/clinic-billing/internal/domain"
)

// TxManager runs fn inline and records how many transactions were opened.
type TxManager struct {
	Calls int
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Patient, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Patient), args.Int(1), args.Error(2)
}

func (m *MockPatientRepository) ListActive(ctx context.Context) ([]*domain.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Patient), args.Error(1)
}

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuotationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Quotation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

type MockFinancingRepository struct {
	mock.Mock
}

func (m *MockFinancingRepository) Create(ctx context.Context, financing *domain.Financing) error {
	args := m.Called(ctx, financing)
	return args.Error(0)
}

func (m *MockFinancingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Financing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Financing), args.Error(1)
}

func (m *MockFinancingRepository) Update(ctx context.Context, financing *domain.Financing) error {
	args := m.Called(ctx, financing)
	return args.Error(0)
}

func (m *MockFinancingRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Financing, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Financing), args.Int(1), args.Error(2)
}

func (m *MockFinancingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Financing), args.Error(1)
}

func (m *MockFinancingRepository) MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFinancingRepository) CreateInstallments(ctx context.Context, installments []*domain.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockFinancingRepository) GetInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, financingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockFinancingRepository) GetInstallment(ctx context.Context, financingID, installmentID uuid.UUID) (*domain.Installment, error) {
	args := m.Called(ctx, financingID, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockFinancingRepository) GetUnpaidInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, financingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockFinancingRepository) GetInstallmentsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockFinancingRepository) MarkInstallmentPaid(ctx context.Context, installment *domain.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockFinancingRepository) ClearInstallmentPayment(ctx context.Context, installmentID, paymentID uuid.UUID) error {
	args := m.Called(ctx, installmentID, paymentID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkReverted(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Payment, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Payment), args.Int(1), args.Error(2)
}

func (m *MockPaymentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}
