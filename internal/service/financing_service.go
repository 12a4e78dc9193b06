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
	"github.com/segyhp/clinic-billing/pkg/utils"
)

const financingModule = "financing"

type FinancingService struct {
	TxManager     repository.TxManager
	FinancingRepo repository.FinancingRepository
	PatientRepo   repository.PatientRepository
	QuotationRepo repository.QuotationRepository
	cache         ViewCache
	validate      *validator.Validate
	config        *config.Config
	logger        logrus.FieldLogger
	now           Clock
}

func NewFinancingService(
	txManager repository.TxManager,
	financingRepo repository.FinancingRepository,
	patientRepo repository.PatientRepository,
	quotationRepo repository.QuotationRepository,
	cache ViewCache,
	validate *validator.Validate,
	config *config.Config,
	logger logrus.FieldLogger,
) *FinancingService {
	return &FinancingService{
		TxManager:     txManager,
		FinancingRepo: financingRepo,
		PatientRepo:   patientRepo,
		QuotationRepo: quotationRepo,
		cache:         cache,
		validate:      validate,
		config:        config,
		logger:        logger,
		now:           systemClock,
	}
}

// CreateFinancing validates the request, builds the installment schedule and
// stores the financing with its installments in one transaction.
func (s *FinancingService) CreateFinancing(ctx context.Context, req *domain.CreateFinancingRequest) (*domain.FinancingDetail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}

	principal := req.TotalAmount.Sub(req.DownPayment)
	if !principal.IsPositive() {
		return nil, customError.WrapInvalidPrincipal(req.TotalAmount.String(), req.DownPayment.String())
	}
	if principal.LessThan(decimal.New(int64(req.InstallmentCount), -utils.MoneyScale)) {
		return nil, customError.NewValidationError("principal must cover at least one cent per installment")
	}

	fields := logrus.Fields{"patient_id": req.PatientID}

	patient, err := s.PatientRepo.GetByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatientNotFound(req.PatientID.String())
		}
		return nil, internalError(s.logger, financingModule, "CreateFinancing", fields, err)
	}

	if req.QuotationID != nil {
		if _, err := s.QuotationRepo.GetByID(ctx, *req.QuotationID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapQuotationNotFound(req.QuotationID.String())
			}
			return nil, internalError(s.logger, financingModule, "CreateFinancing", fields, err)
		}
	}

	financing, installments := domain.NewFinancing(req, s.now())
	financing.PatientName = patient.FullName()

	err = s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.FinancingRepo.Create(ctx, financing); err != nil {
			return err
		}
		return s.FinancingRepo.CreateInstallments(ctx, installments)
	})
	if err != nil {
		fields["financing_id"] = financing.ID
		return nil, internalError(s.logger, financingModule, "CreateFinancing", fields, err)
	}

	s.logger.WithFields(logrus.Fields{
		"financing_id": financing.ID,
		"patient_id":   financing.PatientID,
		"principal":    principal.String(),
		"installments": len(installments),
	}).Info("financing created")

	refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
		Type:         domain.ViewEventFinancingCreated,
		PatientID:    uuidPtr(financing.PatientID),
		FinancingIDs: []uuid.UUID{financing.ID},
	})

	return domain.NewFinancingDetail(financing, installments), nil
}

// GetFinancing returns the financing with its installments, served from the
// view cache when warm.
func (s *FinancingService) GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, error) {
	cached, generation, cacheErr := s.cache.GetFinancing(ctx, id)
	if cacheErr != nil {
		s.logger.WithError(cacheErr).WithField("financing_id", id).Warn("financing view cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	fields := logrus.Fields{"financing_id": id}

	financing, err := s.FinancingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFinancingNotFound(id.String())
		}
		return nil, internalError(s.logger, financingModule, "GetFinancing", fields, err)
	}

	installments, err := s.FinancingRepo.GetInstallments(ctx, id)
	if err != nil {
		return nil, internalError(s.logger, financingModule, "GetFinancing", fields, err)
	}

	detail := domain.NewFinancingDetail(financing, installments)
	if cacheErr != nil {
		// generation unknown
		return detail, nil
	}
	if err := s.cache.SetFinancing(ctx, detail, generation); err != nil {
		s.logger.WithError(err).WithField("financing_id", id).Warn("financing view cache write failed")
	}

	return detail, nil
}

func (s *FinancingService) ListFinancings(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Financing], error) {
	page = page.Normalize(s.config.Business.DefaultPageSize, s.config.Business.MaxPageSize)

	financings, total, err := s.FinancingRepo.List(ctx, page)
	if err != nil {
		return nil, internalError(s.logger, financingModule, "ListFinancings", nil, err)
	}

	return domain.NewPage(financings, total, page), nil
}

func (s *FinancingService) ListFinancingsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error) {
	fields := logrus.Fields{"patient_id": patientID}

	if _, err := s.PatientRepo.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatientNotFound(patientID.String())
		}
		return nil, internalError(s.logger, financingModule, "ListFinancingsByPatient", fields, err)
	}

	financings, err := s.FinancingRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, internalError(s.logger, financingModule, "ListFinancingsByPatient", fields, err)
	}
	if financings == nil {
		financings = []*domain.Financing{}
	}

	return financings, nil
}

// CancelFinancing moves an ACTIVE or OVERDUE financing to CANCELLED.
func (s *FinancingService) CancelFinancing(ctx context.Context, id uuid.UUID) (*domain.Financing, error) {
	var financing *domain.Financing

	err := s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		financing, err = s.FinancingRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapFinancingNotFound(id.String())
			}
			return err
		}

		if !financing.Cancel(s.now()) {
			return customError.WrapFinancingNotCancelable(id.String(), financing.Status)
		}

		if err := s.FinancingRepo.Update(ctx, financing); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return customError.WrapConcurrentUpdate("Financing", id.String())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, internalError(s.logger, financingModule, "CancelFinancing", logrus.Fields{"financing_id": id}, err)
	}

	s.logger.WithField("financing_id", id).Info("financing cancelled")

	refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
		Type:         domain.ViewEventFinancingCancelled,
		PatientID:    uuidPtr(financing.PatientID),
		FinancingIDs: []uuid.UUID{financing.ID},
	})

	return financing, nil
}

// MarkOverdue flags every ACTIVE financing with an installment past due at
// now and returns the flagged ids.
func (s *FinancingService) MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := s.FinancingRepo.MarkOverdue(ctx, now)
	if err != nil {
		return nil, internalError(s.logger, financingModule, "MarkOverdue", logrus.Fields{"now": now}, err)
	}

	s.logger.WithFields(logrus.Fields{"flagged": len(ids), "now": now}).Info("overdue sweep finished")

	if len(ids) > 0 {
		refreshViews(ctx, s.cache, s.logger, &domain.ViewEvent{
			Type:         domain.ViewEventFinancingsOverdue,
			FinancingIDs: ids,
		})
	}

	return ids, nil
}
