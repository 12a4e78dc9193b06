package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/clinic-billing/internal/domain"
)

const quotationSelect = `
	SELECT q.id, q.patient_id, COALESCE(p.first_name || ' ' || p.last_name, '') AS patient_name,
		q.date, q.status, q.total, q.notes, q.created_at, q.updated_at
	FROM quotations q
	LEFT JOIN patients p ON p.id = q.patient_id
`

type quotationRepository struct {
	db *sqlx.DB
}

func NewQuotationRepository(db *sqlx.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

// Create is expected to run inside a transaction so the items land with the quotation.
func (r *quotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	query := `
		INSERT INTO quotations (id, patient_id, date, status, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		quotation.ID,
		quotation.PatientID,
		quotation.Date,
		quotation.Status,
		quotation.Total,
		quotation.Notes,
		quotation.CreatedAt,
		quotation.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return r.insertItems(ctx, quotation.Items)
}

func (r *quotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	db := conn(ctx, r.db)

	var quotation domain.Quotation
	if err := db.GetContext(ctx, &quotation, quotationSelect+` WHERE q.id = $1`, id); err != nil {
		return nil, err
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	quotation.Items = items

	return &quotation, nil
}

// Update is expected to run inside a transaction so the item swap is atomic.
func (r *quotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	db := conn(ctx, r.db)

	query := `
		UPDATE quotations
		SET patient_id = $2, date = $3, status = $4, total = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`

	res, err := db.ExecContext(ctx, query,
		quotation.ID,
		quotation.PatientID,
		quotation.Date,
		quotation.Status,
		quotation.Total,
		quotation.Notes,
		quotation.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := expectOne(res, sql.ErrNoRows); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotation.ID); err != nil {
		return err
	}

	return r.insertItems(ctx, quotation.Items)
}

func (r *quotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return mapDeleteError(err)
	}

	return expectOne(res, sql.ErrNoRows)
}

func (r *quotationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Quotation, error) {
	var quotations []*domain.Quotation
	query := quotationSelect + ` WHERE q.patient_id = $1 ORDER BY q.date DESC, q.created_at DESC`
	if err := conn(ctx, r.db).SelectContext(ctx, &quotations, query, patientID); err != nil {
		return nil, err
	}

	return quotations, nil
}

func (r *quotationRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Quotation, error) {
	var quotations []*domain.Quotation
	query := quotationSelect + ` WHERE q.status = $1 ORDER BY q.date DESC, q.created_at DESC`
	if err := conn(ctx, r.db).SelectContext(ctx, &quotations, query, status); err != nil {
		return nil, err
	}

	return quotations, nil
}

func (r *quotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE quotations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, at,
	)
	if err != nil {
		return err
	}

	return expectOne(res, sql.ErrNoRows)
}

func (r *quotationRepository) insertItems(ctx context.Context, items []*domain.QuotationItem) error {
	query := `
		INSERT INTO quotation_items (id, quotation_id, service_id, unit_price, quantity, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	db := conn(ctx, r.db)
	for _, item := range items {
		_, err := db.ExecContext(ctx, query,
			item.ID,
			item.QuotationID,
			item.ServiceID,
			item.UnitPrice,
			item.Quantity,
			item.Notes,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *quotationRepository) getItems(ctx context.Context, quotationID uuid.UUID) ([]*domain.QuotationItem, error) {
	query := `
		SELECT id, quotation_id, service_id, unit_price, quantity, notes
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY id
	`

	items := []*domain.QuotationItem{}
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, quotationID); err != nil {
		return nil, err
	}

	return items, nil
}
