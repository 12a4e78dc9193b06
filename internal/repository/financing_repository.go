package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/clinic-billing/internal/domain"
)

const financingSelect = `
	SELECT f.id, f.patient_id, COALESCE(p.first_name || ' ' || p.last_name, '') AS patient_name,
		f.quotation_id, f.treatment_plan_id, f.total_amount, f.down_payment, f.balance,
		f.interest_rate, f.installment_count, f.start_date, f.end_date, f.status, f.version,
		f.created_at, f.updated_at
	FROM financings f
	LEFT JOIN patients p ON p.id = f.patient_id
`

const installmentColumns = `id, financing_id, number, amount, due_date, paid, paid_at, payment_id`

type financingRepository struct {
	db *sqlx.DB
}

func NewFinancingRepository(db *sqlx.DB) FinancingRepository {
	return &financingRepository{db: db}
}

func (r *financingRepository) Create(ctx context.Context, financing *domain.Financing) error {
	query := `
		INSERT INTO financings (id, patient_id, quotation_id, treatment_plan_id, total_amount, down_payment,
			balance, interest_rate, installment_count, start_date, end_date, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		financing.ID,
		financing.PatientID,
		financing.QuotationID,
		financing.TreatmentPlanID,
		financing.TotalAmount,
		financing.DownPayment,
		financing.Balance,
		financing.InterestRate,
		financing.InstallmentCount,
		financing.StartDate,
		financing.EndDate,
		financing.Status,
		financing.Version,
		financing.CreatedAt,
		financing.UpdatedAt,
	)

	return err
}

func (r *financingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Financing, error) {
	var financing domain.Financing
	if err := conn(ctx, r.db).GetContext(ctx, &financing, financingSelect+` WHERE f.id = $1`, id); err != nil {
		return nil, err
	}

	return &financing, nil
}

func (r *financingRepository) Update(ctx context.Context, financing *domain.Financing) error {
	query := `
		UPDATE financings
		SET balance = $3, status = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $2
	`

	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		financing.ID,
		financing.Version,
		financing.Balance,
		financing.Status,
		financing.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := expectOne(res, ErrConflict); err != nil {
		return err
	}

	financing.Version++
	return nil
}

func (r *financingRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Financing, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM financings`); err != nil {
		return nil, 0, err
	}

	var financings []*domain.Financing
	query := financingSelect + ` ORDER BY f.created_at DESC, f.id LIMIT $1 OFFSET $2`
	if err := db.SelectContext(ctx, &financings, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, err
	}

	return financings, total, nil
}

func (r *financingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Financing, error) {
	var financings []*domain.Financing
	query := financingSelect + ` WHERE f.patient_id = $1 ORDER BY f.created_at DESC, f.id`
	if err := conn(ctx, r.db).SelectContext(ctx, &financings, query, patientID); err != nil {
		return nil, err
	}

	return financings, nil
}

func (r *financingRepository) MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE financings f
		SET status = 'OVERDUE', updated_at = $1, version = f.version + 1
		WHERE f.status = 'ACTIVE'
			AND EXISTS (
				SELECT 1 FROM installments i
				WHERE i.financing_id = f.id AND i.paid = false AND i.due_date < $1
			)
		RETURNING f.id
	`

	var ids []uuid.UUID
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, now); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *financingRepository) CreateInstallments(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	db := conn(ctx, r.db)
	for _, inst := range installments {
		_, err := db.ExecContext(ctx, query,
			inst.ID,
			inst.FinancingID,
			inst.Number,
			inst.Amount,
			inst.DueDate,
			inst.Paid,
			inst.PaidAt,
			inst.PaymentID,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *financingRepository) GetInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE financing_id = $1
		ORDER BY number
	`

	var installments []*domain.Installment
	if err := conn(ctx, r.db).SelectContext(ctx, &installments, query, financingID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *financingRepository) GetInstallment(ctx context.Context, financingID, installmentID uuid.UUID) (*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE id = $1 AND financing_id = $2
	`

	var inst domain.Installment
	if err := conn(ctx, r.db).GetContext(ctx, &inst, query, installmentID, financingID); err != nil {
		return nil, err
	}

	return &inst, nil
}

func (r *financingRepository) GetUnpaidInstallments(ctx context.Context, financingID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE financing_id = $1 AND paid = false
		ORDER BY number
	`

	var installments []*domain.Installment
	if err := conn(ctx, r.db).SelectContext(ctx, &installments, query, financingID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *financingRepository) GetInstallmentsByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE payment_id = $1
		ORDER BY number
	`

	var installments []*domain.Installment
	if err := conn(ctx, r.db).SelectContext(ctx, &installments, query, paymentID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *financingRepository) MarkInstallmentPaid(ctx context.Context, inst *domain.Installment) error {
	query := `
		UPDATE installments
		SET paid = true, paid_at = $2, payment_id = $3
		WHERE id = $1 AND paid = false
	`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, inst.ID, inst.PaidAt, inst.PaymentID)
	if err != nil {
		return err
	}
	return expectOne(res, ErrConflict)
}

func (r *financingRepository) ClearInstallmentPayment(ctx context.Context, installmentID, paymentID uuid.UUID) error {
	query := `
		UPDATE installments
		SET paid = false, paid_at = NULL, payment_id = NULL
		WHERE id = $1 AND payment_id = $2
	`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, installmentID, paymentID)
	if err != nil {
		return err
	}
	return expectOne(res, ErrConflict)
}
