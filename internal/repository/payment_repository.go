package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/clinic-billing/internal/domain"
)

const paymentSelect = `
	SELECT pm.id, pm.amount, pm.method, pm.reference, pm.comment, pm.status, pm.patient_id,
		COALESCE(p.first_name || ' ' || p.last_name, '') AS patient_name,
		pm.consultation_id, pm.quotation_id, pm.treatment_plan_id, pm.financing_id,
		pm.paid_at, pm.created_at, pm.updated_at
	FROM payments pm
	LEFT JOIN patients p ON p.id = pm.patient_id
`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, amount, method, reference, comment, status, patient_id, consultation_id,
			quotation_id, treatment_plan_id, financing_id, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.Comment,
		payment.Status,
		payment.PatientID,
		payment.ConsultationID,
		payment.QuotationID,
		payment.TreatmentPlanID,
		payment.FinancingID,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	if err := conn(ctx, r.db).GetContext(ctx, &payment, paymentSelect+` WHERE pm.id = $1`, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) MarkReverted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE payments
		SET status = 'REVERTED', updated_at = $2
		WHERE id = $1 AND status = 'REGISTERED'
	`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}

	return expectOne(res, ErrConflict)
}

func (r *paymentRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Payment, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments`); err != nil {
		return nil, 0, err
	}

	var payments []*domain.Payment
	query := paymentSelect + ` ORDER BY pm.paid_at DESC, pm.id LIMIT $1 OFFSET $2`
	if err := db.SelectContext(ctx, &payments, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	query := paymentSelect + ` WHERE pm.patient_id = $1 ORDER BY pm.paid_at DESC, pm.id`
	if err := conn(ctx, r.db).SelectContext(ctx, &payments, query, patientID); err != nil {
		return nil, err
	}

	return payments, nil
}
