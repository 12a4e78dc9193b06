package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/clinic-billing/internal/domain"
)

// ErrConflict is returned when a guarded update matched no row because the
// row changed since it was read.
var ErrConflict = errors.New("row changed concurrently")

// ErrReferenced is returned when a delete is blocked by rows that still
// reference the target.
var ErrReferenced = errors.New("row is still referenced")

// Lookups that find nothing return sql.ErrNoRows.

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of patients ordered by last name and the total count
	List(ctx context.Context, page domain.PageRequest) ([]*domain.Patient, int, error)

	// ListActive returns every active patient ordered by last name
	ListActive(ctx context.Context) ([]*domain.Patient, error)
}

// QuotationRepository defines the interface for quotation data operations
type QuotationRepository interface {
	// Create inserts the quotation and its items
	Create(ctx context.Context, quotation *domain.Quotation) error

	// GetByID retrieves a quotation with its items
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error)

	// Update rewrites the quotation row and replaces its items
	Update(ctx context.Context, quotation *domain.Quotation) error

	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.Quotation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
}

// FinancingRepository defines the interface for financing and installment data operations
type FinancingRepository interface {
	Create(ctx context.Context, financing *domain.Financing) error

	// GetByID retrieves a financing with its patient name
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Financing, error)

	// Update writes balance and status when the stored version still matches
	// financing.Version, then bumps the version. A stale version gives ErrConflict.
	Update(ctx context.Context, financing *domain.Financing) error

	List(ctx context.Context, page domain.PageRequest) ([]*domain.Financing, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error)

	// MarkOverdue flags ACTIVE financings with an unpaid installment due
	// before now and returns their ids
	MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	// CreateInstallments creates the installment schedule
	CreateInstallments(ctx context.Context, installments []*domain.Installment) error

	// GetInstallments retrieves the schedule ordered by number
	GetInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error)

	// GetInstallment retrieves one installment of the financing
	GetInstallment(ctx context.Context, financingID, installmentID uuid.UUID) (*domain.Installment, error)

	// GetUnpaidInstallments retrieves unpaid installments ordered by number
	GetUnpaidInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error)

	// GetInstallmentsByPayment retrieves the installments a payment settled
	GetInstallmentsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error)

	// MarkInstallmentPaid stores the paid flag, date and payment link of an
	// installment that is still unpaid. An installment paid meanwhile gives ErrConflict.
	MarkInstallmentPaid(ctx context.Context, installment *domain.Installment) error

	// ClearInstallmentPayment unlinks an installment from the payment that settled it
	ClearInstallmentPayment(ctx context.Context, installmentID, paymentID uuid.UUID) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment with its patient name
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// MarkReverted moves a REGISTERED payment to REVERTED. A payment that is
	// no longer REGISTERED gives ErrConflict.
	MarkReverted(ctx context.Context, id uuid.UUID, at time.Time) error

	List(ctx context.Context, page domain.PageRequest) ([]*domain.Payment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Payment, error)
}
