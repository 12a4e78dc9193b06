package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/internal/repository"
	customError "github.com/segyhp/clinic-billing/pkg/errors"
)

const patientModule = "patient"

type PatientService struct {
	PatientRepo repository.PatientRepository
	validate    *validator.Validate
	config      *config.Config
	logger      logrus.FieldLogger
	now         Clock
}

func NewPatientService(
	patientRepo repository.PatientRepository,
	validate *validator.Validate,
	config *config.Config,
	logger logrus.FieldLogger,
) *PatientService {
	return &PatientService{
		PatientRepo: patientRepo,
		validate:    validate,
		config:      config,
		logger:      logger,
		now:         systemClock,
	}
}

// CreatePatient stores a new patient, active unless the request says otherwise.
func (s *PatientService) CreatePatient(ctx context.Context, req *domain.PatientRequest) (*domain.Patient, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}

	now := s.now()
	patient := &domain.Patient{
		ID:        uuid.New(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	patient.Apply(req)

	if err := s.PatientRepo.Create(ctx, patient); err != nil {
		return nil, internalError(s.logger, patientModule, "CreatePatient", logrus.Fields{"patient_id": patient.ID}, err)
	}

	return patient, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	patient, err := s.PatientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatientNotFound(id.String())
		}
		return nil, internalError(s.logger, patientModule, "GetPatient", logrus.Fields{"patient_id": id}, err)
	}

	return patient, nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, req *domain.PatientRequest) (*domain.Patient, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, customError.WrapValidation(err)
	}

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.Apply(req)
	patient.UpdatedAt = s.now()

	if err := s.PatientRepo.Update(ctx, patient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatientNotFound(id.String())
		}
		return nil, internalError(s.logger, patientModule, "UpdatePatient", logrus.Fields{"patient_id": id}, err)
	}

	return patient, nil
}

// DeletePatient removes a patient. Patients with financings, payments or
// quotations cannot be deleted.
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.PatientRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return customError.WrapPatientNotFound(id.String())
		case errors.Is(err, repository.ErrReferenced):
			return customError.WrapInUse("Patient", id.String())
		}
		return internalError(s.logger, patientModule, "DeletePatient", logrus.Fields{"patient_id": id}, err)
	}

	return nil
}

func (s *PatientService) ListPatients(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Patient], error) {
	page = page.Normalize(s.config.Business.DefaultPageSize, s.config.Business.MaxPageSize)

	patients, total, err := s.PatientRepo.List(ctx, page)
	if err != nil {
		return nil, internalError(s.logger, patientModule, "ListPatients", nil, err)
	}

	return domain.NewPage(patients, total, page), nil
}

// ListActivePatients feeds the patient pickers of the billing forms.
func (s *PatientService) ListActivePatients(ctx context.Context) ([]*domain.Patient, error) {
	patients, err := s.PatientRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError(s.logger, patientModule, "ListActivePatients", nil, err)
	}
	if patients == nil {
		patients = []*domain.Patient{}
	}

	return patients, nil
}
