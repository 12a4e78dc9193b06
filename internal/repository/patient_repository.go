package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/clinic-billing/internal/domain"
)

const patientColumns = `id, first_name, last_name, national_id, birth_date, gender, phone, email, address, insurer_id, active, created_at, updated_at`

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.NationalID,
		patient.BirthDate,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.InsurerID,
		patient.Active,
		patient.CreatedAt,
		patient.UpdatedAt,
	)

	return err
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient domain.Patient
	if err := conn(ctx, r.db).GetContext(ctx, &patient, query, id); err != nil {
		return nil, err
	}

	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $2, last_name = $3, national_id = $4, birth_date = $5, gender = $6,
			phone = $7, email = $8, address = $9, insurer_id = $10, active = $11, updated_at = $12
		WHERE id = $1
	`

	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.NationalID,
		patient.BirthDate,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.InsurerID,
		patient.Active,
		patient.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return expectOne(res, sql.ErrNoRows)
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return mapDeleteError(err)
	}

	return expectOne(res, sql.ErrNoRows)
}

func (r *patientRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Patient, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + patientColumns + `
		FROM patients
		ORDER BY last_name, first_name, id
		LIMIT $1 OFFSET $2
	`

	var patients []*domain.Patient
	if err := db.SelectContext(ctx, &patients, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}

func (r *patientRepository) ListActive(ctx context.Context) ([]*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE active = true
		ORDER BY last_name, first_name, id
	`

	var patients []*domain.Patient
	if err := conn(ctx, r.db).SelectContext(ctx, &patients, query); err != nil {
		return nil, err
	}

	return patients, nil
}
