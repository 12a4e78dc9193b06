package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/internal/repository"
	customError "github.com/segyhp/clinic-billing/pkg/errors"
)

const paymentModule = "payment"

type PaymentService struct {
	TxManager     repository.TxManager
	PaymentRepo   repository.PaymentRepository
	FinancingRepo repository.FinancingRepository
	PatientRepo   repository.PatientRepository
	cache         ViewCache
	validate      *validator.Validate
	config        *config.Config
	logger        logrus.FieldLogger
	now           Clock
}

func NewPaymentService(
	txManager repository.TxManager,
	paymentRepo repository.PaymentRepository,
	financingRepo repository.FinancingRepository,
	patientRepo repository.PatientRepository,
	cache ViewCache,
	validate *validator.Validate,
	config *config.Config,
	logger logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		TxManager:     txManager,
		PaymentRepo:   paymentRepo,
		FinancingRepo: financingRepo,
		PatientRepo:   patientRepo,
		cache:         cache,
		validate:      validate,
		config:        config,
		logger:        logger,
		now:           systemClock,
	}
}

// CreatePayment records a payment and, when it names a financing, applies
// it to the targeted installment or greedily to the unpaid ones in order.
// The payment insert and every installment and balance change commit together.
func (s *PaymentService) CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}
	if req.InstallmentID != nil && req.FinancingID == nil {
		return nil, customError.NewValidationError("installment_id requires financing_id")
	}

	now := s.now()
	payment := domain.NewPayment(req, now)
	fields := logrus.Fields{"payment_id": payment.ID}

	var (
		financing  *domain.Financing
		allocation *domain.Allocation
	)

	err := s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.FinancingID != nil {
			var err error
			financing, err = s.loadPayableFinancing(ctx, *req.FinancingID)
			if err != nil {
				return err
			}
			switch {
			case payment.PatientID == nil:
				payment.PatientID = uuidPtr(financing.PatientID)
			case *payment.PatientID != financing.PatientID:
				return customError.NewValidationError("financing does not belong to patient_id")
			}
			payment.PatientName = financing.PatientName
		} else if payment.PatientID != nil {
			patient, err := s.PatientRepo.GetByID(ctx, *payment.PatientID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return customError.WrapPatientNotFound(payment.PatientID.String())
				}
				return err
			}
			payment.PatientName = patient.FullName()
		}

		if err := s.PaymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		if financing == nil {
			return nil
		}

		var err error
		allocation, err = s.allocate(ctx, financing, payment, req.InstallmentID, now)
		return err
	})
	if err != nil {
		return nil, internalError(s.logger, paymentModule, "CreatePayment", fields, err)
	}

	resp := &domain.CreatePaymentResponse{
		Payment:         payment.View(),
		Allocation:      domain.AllocationNone,
		Settled:         []*domain.Installment{},
		UnappliedAmount: decimal.Zero,
	}

	entry := s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"amount":     payment.Amount.String(),
		"method":     payment.Method,
	})

	if financing == nil {
		entry.Info("payment registered")
		refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
			Type:      domain.ViewEventPaymentCreated,
			PatientID: payment.PatientID,
			PaymentID: uuidPtr(payment.ID),
		})
		return resp, nil
	}

	resp.Allocation = allocation.Outcome
	resp.Settled = allocation.Settled
	resp.UnappliedAmount = allocation.Remainder

	entry = entry.WithFields(logrus.Fields{
		"financing_id": financing.ID,
		"allocation":   allocation.Outcome,
		"settled":      len(allocation.Settled),
		"balance":      financing.Balance.String(),
	})
	if allocation.Outcome == domain.AllocationUnapplied {
		entry.Warn("payment registered without settling any installment")
	} else {
		entry.Info("payment applied")
	}

	refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
		Type:         domain.ViewEventPaymentCreated,
		PatientID:    payment.PatientID,
		FinancingIDs: []uuid.UUID{financing.ID},
		PaymentID:    uuidPtr(payment.ID),
	})

	return resp, nil
}

func (s *PaymentService) loadPayableFinancing(ctx context.Context, id uuid.UUID) (*domain.Financing, error) {
	financing, err := s.FinancingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFinancingNotFound(id.String())
		}
		return nil, err
	}
	if financing.IsCancelled() {
		return nil, customError.WrapFinancingCancelled(id.String())
	}
	return financing, nil
}

// allocate matches the payment against the financing's installments and
// persists what it settled. It runs inside the CreatePayment transaction.
func (s *PaymentService) allocate(ctx context.Context, financing *domain.Financing, payment *domain.Payment, installmentID *uuid.UUID, now time.Time) (*domain.Allocation, error) {
	var allocation *domain.Allocation

	if installmentID != nil {
		inst, err := s.FinancingRepo.GetInstallment(ctx, financing.ID, *installmentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		allocation = domain.AllocateToInstallment(financing, inst, payment.ID, payment.Amount, now)
	} else {
		unpaid, err := s.FinancingRepo.GetUnpaidInstallments(ctx, financing.ID)
		if err != nil {
			return nil, err
		}
		allocation = domain.AllocateSequential(financing, unpaid, payment.ID, payment.Amount, now)
	}

	if len(allocation.Settled) == 0 {
		return allocation, nil
	}

	for _, inst := range allocation.Settled {
		if err := s.FinancingRepo.MarkInstallmentPaid(ctx, inst); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, customError.WrapConcurrentUpdate("Installment", inst.ID.String())
			}
			return nil, err
		}
	}

	if err := s.FinancingRepo.Update(ctx, financing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, customError.WrapConcurrentUpdate("Financing", financing.ID.String())
		}
		return nil, err
	}

	return allocation, nil
}

// RevertPayment undoes a REGISTERED payment: every installment it settled is
// unpaid again, the amounts go back onto the financing balance and the
// financing status is recomputed from that balance.
func (s *PaymentService) RevertPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var (
		payment      *domain.Payment
		financingIDs []uuid.UUID
	)

	err := s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.PaymentRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapPaymentNotFound(id.String())
			}
			return err
		}
		if payment.IsReverted() {
			return customError.WrapPaymentAlreadyReverted(id.String())
		}

		settled, err := s.FinancingRepo.GetInstallmentsByPayment(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		for _, group := range groupByFinancing(settled) {
			if err := s.restore(ctx, group, payment.ID, now); err != nil {
				return err
			}
			financingIDs = append(financingIDs, group[0].FinancingID)
		}

		if err := s.PaymentRepo.MarkReverted(ctx, id, now); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return customError.WrapPaymentAlreadyReverted(id.String())
			}
			return err
		}

		payment.Status = domain.PaymentStatusReverted
		payment.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, internalError(s.logger, paymentModule, "RevertPayment", logrus.Fields{"payment_id": id}, err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":    id,
		"financing_ids": financingIDs,
	}).Info("payment reverted")

	refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
		Type:         domain.ViewEventPaymentReverted,
		PatientID:    payment.PatientID,
		FinancingIDs: financingIDs,
		PaymentID:    uuidPtr(payment.ID),
	})

	return payment, nil
}

// restore unpays insts, which all belong to one financing, and writes the
// restored balance back.
func (s *PaymentService) restore(ctx context.Context, insts []*domain.Installment, paymentID uuid.UUID, now time.Time) error {
	financingID := insts[0].FinancingID

	financing, err := s.FinancingRepo.GetByID(ctx, financingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapFinancingNotFound(financingID.String())
		}
		return err
	}

	for _, inst := range insts {
		if err := s.FinancingRepo.ClearInstallmentPayment(ctx, inst.ID, paymentID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return customError.WrapConcurrentUpdate("Installment", inst.ID.String())
			}
			return err
		}
	}

	financing.RestoreInstallments(insts, now)

	if err := s.FinancingRepo.Update(ctx, financing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return customError.WrapConcurrentUpdate("Financing", financingID.String())
		}
		return err
	}

	return nil
}

// groupByFinancing splits installments by financing, keeping first-seen order.
func groupByFinancing(insts []*domain.Installment) [][]*domain.Installment {
	index := make(map[uuid.UUID]int)
	var groups [][]*domain.Installment
	for _, inst := range insts {
		i, ok := index[inst.FinancingID]
		if !ok {
			i = len(groups)
			index[inst.FinancingID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], inst)
	}
	return groups
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.PaymentView, error) {
	payment, err := s.PaymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(id.String())
		}
		return nil, internalError(s.logger, paymentModule, "GetPayment", logrus.Fields{"payment_id": id}, err)
	}

	return payment.View(), nil
}

func (s *PaymentService) ListPayments(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.PaymentView], error) {
	page = page.Normalize(s.config.Business.DefaultPageSize, s.config.Business.MaxPageSize)

	payments, total, err := s.PaymentRepo.List(ctx, page)
	if err != nil {
		return nil, internalError(s.logger, paymentModule, "ListPayments", nil, err)
	}

	return domain.NewPage(domain.Views(payments), total, page), nil
}

func (s *PaymentService) ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.PaymentView, error) {
	fields := logrus.Fields{"patient_id": patientID}

	if _, err := s.PatientRepo.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatientNotFound(patientID.String())
		}
		return nil, internalError(s.logger, paymentModule, "ListPaymentsByPatient", fields, err)
	}

	payments, err := s.PaymentRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, internalError(s.logger, paymentModule, "ListPaymentsByPatient", fields, err)
	}

	return domain.Views(payments), nil
}
