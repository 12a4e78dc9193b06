package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/internal/repository"
	customError "github.com/segyhp/clinic-billing/pkg/errors"
)

const quotationModule = "quotation"

type QuotationService struct {
	TxManager     repository.TxManager
	QuotationRepo repository.QuotationRepository
	PatientRepo   repository.PatientRepository
	validate      *validator.Validate
	logger        logrus.FieldLogger
	now           Clock
}

func NewQuotationService(
	txManager repository.TxManager,
	quotationRepo repository.QuotationRepository,
	patientRepo repository.PatientRepository,
	validate *validator.Validate,
	logger logrus.FieldLogger,
) *QuotationService {
	return &QuotationService{
		TxManager:     txManager,
		QuotationRepo: quotationRepo,
		PatientRepo:   patientRepo,
		validate:      validate,
		logger:        logger,
		now:           systemClock,
	}
}

// CreateQuotation stores a quotation with its items. The total is computed
// from the items, never taken from the caller.
func (s *QuotationService) CreateQuotation(ctx context.Context, req *domain.QuotationRequest) (*domain.Quotation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}
	if err := s.ensurePatient(ctx, req.PatientID, "CreateQuotation"); err != nil {
		return nil, err
	}

	now := s.now()
	quotation := &domain.Quotation{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	quotation.Apply(req)

	err := s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.QuotationRepo.Create(ctx, quotation)
	})
	if err != nil {
		return nil, internalError(s.logger, quotationModule, "CreateQuotation", logrus.Fields{"quotation_id": quotation.ID}, err)
	}

	return quotation, nil
}

func (s *QuotationService) GetQuotation(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	quotation, err := s.QuotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapQuotationNotFound(id.String())
		}
		return nil, internalError(s.logger, quotationModule, "GetQuotation", logrus.Fields{"quotation_id": id}, err)
	}

	return quotation, nil
}

// UpdateQuotation rewrites the quotation and replaces all of its items in
// one transaction.
func (s *QuotationService) UpdateQuotation(ctx context.Context, id uuid.UUID, req *domain.QuotationRequest) (*domain.Quotation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}
	if err := s.ensurePatient(ctx, req.PatientID, "UpdateQuotation"); err != nil {
		return nil, err
	}

	var quotation *domain.Quotation

	err := s.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		quotation, err = s.QuotationRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapQuotationNotFound(id.String())
			}
			return err
		}

		quotation.Apply(req)
		quotation.UpdatedAt = s.now()

		return s.QuotationRepo.Update(ctx, quotation)
	})
	if err != nil {
		return nil, internalError(s.logger, quotationModule, "UpdateQuotation", logrus.Fields{"quotation_id": id}, err)
	}

	return quotation, nil
}

func (s *QuotationService) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	if err := s.QuotationRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return customError.WrapQuotationNotFound(id.String())
		case errors.Is(err, repository.ErrReferenced):
			return customError.WrapInUse("Quotation", id.String())
		}
		return internalError(s.logger, quotationModule, "DeleteQuotation", logrus.Fields{"quotation_id": id}, err)
	}

	return nil
}

func (s *QuotationService) ListQuotationsByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error) {
	if err := s.ensurePatient(ctx, patientID, "ListQuotationsByPatient"); err != nil {
		return nil, err
	}

	quotations, err := s.QuotationRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, internalError(s.logger, quotationModule, "ListQuotationsByPatient", logrus.Fields{"patient_id": patientID}, err)
	}
	if quotations == nil {
		quotations = []*domain.Quotation{}
	}

	return quotations, nil
}

// ListAcceptedQuotations returns the quotations a financing can be opened against.
func (s *QuotationService) ListAcceptedQuotations(ctx context.Context) ([]*domain.Quotation, error) {
	quotations, err := s.QuotationRepo.ListByStatus(ctx, domain.QuotationStatusAccepted)
	if err != nil {
		return nil, internalError(s.logger, quotationModule, "ListAcceptedQuotations", nil, err)
	}
	if quotations == nil {
		quotations = []*domain.Quotation{}
	}

	return quotations, nil
}

func (s *QuotationService) UpdateQuotationStatus(ctx context.Context, id uuid.UUID, req *domain.QuotationStatusRequest) (*domain.Quotation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}

	if err := s.QuotationRepo.UpdateStatus(ctx, id, req.Status, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapQuotationNotFound(id.String())
		}
		return nil, internalError(s.logger, quotationModule, "UpdateQuotationStatus", logrus.Fields{"quotation_id": id}, err)
	}

	return s.GetQuotation(ctx, id)
}

func (s *QuotationService) ensurePatient(ctx context.Context, patientID uuid.UUID, operation string) error {
	if _, err := s.PatientRepo.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapPatientNotFound(patientID.String())
		}
		return internalError(s.logger, quotationModule, operation, logrus.Fields{"patient_id": patientID}, err)
	}
	return nil
}
