package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/clinic-billing/internal/domain"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return db, mock
}

var financingRowColumns = []string{
	"id", "patient_id", "patient_name", "quotation_id", "treatment_plan_id", "total_amount",
	"down_payment", "balance", "interest_rate", "installment_count", "start_date", "end_date",
	"status", "version", "created_at", "updated_at",
}

var installmentRowColumns = []string{"id", "financing_id", "number", "amount", "due_date", "paid", "paid_at", "payment_id"}

func TestTxManager_WithinTransaction(t *testing.T) {
	t.Run("commits and routes queries through the transaction", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)
		txm := NewTxManager(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments`)).
			WithArgs(id, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return repo.MarkReverted(ctx, id, time.Now())
		})

		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		txm := NewTxManager(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db, mock := setupMockDB(t)
		txm := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return txm.WithinTransaction(ctx, func(context.Context) error { return nil })
		})

		assert.NoError(t, err)
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db, mock := setupMockDB(t)
		txm := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = txm.WithinTransaction(context.Background(), func(context.Context) error {
				panic("boom")
			})
		})
	})
}

func TestFinancingRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	id := uuid.New()
	patientID := uuid.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(financingRowColumns).AddRow(
		id.String(), patientID.String(), "Ana Lopez", nil, nil, "10000.00",
		"2000.00", "8000.00", "0.00", 4, now, now.AddDate(0, 4, 0),
		domain.FinancingStatusActive, 1, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM financings f`)).WithArgs(id).WillReturnRows(rows)

	financing, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, financing.ID)
	assert.Equal(t, "Ana Lopez", financing.PatientName)
	assert.True(t, financing.Balance.Equal(decimal.NewFromInt(8000)))
	assert.Nil(t, financing.QuotationID)
	require.NotNil(t, financing.EndDate)
	assert.Equal(t, 1, financing.Version)
}

func TestFinancingRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM financings f`)).WillReturnRows(sqlmock.NewRows(financingRowColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFinancingRepository_Update(t *testing.T) {
	tests := []struct {
		name            string
		rowsAffected    int64
		expectedErr     error
		expectedVersion int
	}{
		{name: "version matches", rowsAffected: 1, expectedVersion: 4},
		{name: "stale version", rowsAffected: 0, expectedErr: ErrConflict, expectedVersion: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewFinancingRepository(db)
			financing := &domain.Financing{
				ID:        uuid.New(),
				Balance:   decimal.NewFromInt(6000),
				Status:    domain.FinancingStatusActive,
				Version:   3,
				UpdatedAt: time.Now(),
			}

			mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND version = $2`)).
				WithArgs(financing.ID, 3, "6000", domain.FinancingStatusActive, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Update(context.Background(), financing)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedVersion, financing.Version)
		})
	}
}

func TestFinancingRepository_CreateInstallments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	financingID := uuid.New()
	installments := buildTestSchedule(financingID)

	for _, inst := range installments {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO installments`)).
			WithArgs(inst.ID, financingID, inst.Number, "2000", inst.DueDate, false, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err := repo.CreateInstallments(context.Background(), installments)

	assert.NoError(t, err)
}

func buildTestSchedule(financingID uuid.UUID) []*domain.Installment {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.BuildSchedule(financingID, decimal.NewFromInt(8000), 4, start)
}

func TestFinancingRepository_GetUnpaidInstallments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	financingID := uuid.New()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(installmentRowColumns).
		AddRow(uuid.New().String(), financingID.String(), 2, "2000.00", due, false, nil, nil).
		AddRow(uuid.New().String(), financingID.String(), 3, "2000.00", due.AddDate(0, 1, 0), false, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE financing_id = $1 AND paid = false`)).
		WithArgs(financingID).
		WillReturnRows(rows)

	installments, err := repo.GetUnpaidInstallments(context.Background(), financingID)

	require.NoError(t, err)
	require.Len(t, installments, 2)
	assert.Equal(t, 2, installments[0].Number)
	assert.Nil(t, installments[0].PaymentID)
	assert.True(t, installments[1].Amount.Equal(decimal.NewFromInt(2000)))
}

func TestFinancingRepository_MarkInstallmentPaid(t *testing.T) {
	paymentID := uuid.New()
	paidAt := time.Now()
	inst := &domain.Installment{ID: uuid.New(), Paid: true, PaidAt: &paidAt, PaymentID: &paymentID}

	t.Run("unpaid installment", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewFinancingRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND paid = false`)).
			WithArgs(inst.ID, paidAt, paymentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkInstallmentPaid(context.Background(), inst))
	})

	t.Run("paid meanwhile", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewFinancingRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND paid = false`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkInstallmentPaid(context.Background(), inst), ErrConflict)
	})
}

func TestFinancingRepository_ClearInstallmentPayment(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	instID, paymentID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND payment_id = $2`)).
		WithArgs(instID, paymentID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.ClearInstallmentPayment(context.Background(), instID, paymentID))
}

func TestFinancingRepository_MarkOverdue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	now := time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = 'OVERDUE'`)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first.String()).AddRow(second.String()))

	ids, err := repo.MarkOverdue(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
}

func TestFinancingRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFinancingRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM financings`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT $1 OFFSET $2`)).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(financingRowColumns).AddRow(
			uuid.New().String(), uuid.New().String(), "", nil, nil, "100.00",
			"0.00", "100.00", "0.00", 1, now, nil,
			domain.FinancingStatusActive, 1, now, now,
		))

	financings, total, err := repo.List(context.Background(), domain.PageRequest{Page: 2, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.Len(t, financings, 1)
}

func TestPaymentRepository_MarkReverted(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		expectedErr  error
	}{
		{name: "registered payment", rowsAffected: 1},
		{name: "already reverted", rowsAffected: 0, expectedErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPaymentRepository(db)
			id := uuid.New()

			mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND status = 'REGISTERED'`)).
				WithArgs(id, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.MarkReverted(context.Background(), id, time.Now())

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaymentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db)
	financingID := uuid.New()
	payment := domain.NewPayment(&domain.CreatePaymentRequest{
		Amount:      decimal.RequireFromString("2000.50"),
		Method:      domain.PaymentMethodCash,
		FinancingID: &financingID,
	}, time.Now())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).
		WithArgs(payment.ID, "2000.5", domain.PaymentMethodCash, nil, nil, domain.PaymentStatusRegistered,
			nil, nil, nil, nil, financingID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), payment))
}

func TestPaymentRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db)
	id, patientID := uuid.New(), uuid.New()
	now := time.Now()

	columns := []string{
		"id", "amount", "method", "reference", "comment", "status", "patient_id", "patient_name",
		"consultation_id", "quotation_id", "treatment_plan_id", "financing_id", "paid_at", "created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments pm`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), "150.00", domain.PaymentMethodCard, "REF-1", nil, domain.PaymentStatusRegistered,
			patientID.String(), "Ana Lopez", nil, nil, nil, nil, now, now, now,
		))

	payment, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, payment.Reference)
	assert.Equal(t, "REF-1", *payment.Reference)
	assert.Equal(t, patientID, *payment.PatientID)
	assert.Equal(t, "Ana Lopez", payment.PatientName)
	assert.Nil(t, payment.FinancingID)
}

func TestPatientRepository_Delete(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "deleted",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM patients`)).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM patients`)).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: sql.ErrNoRows,
		},
		{
			name: "still referenced",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM patients`)).
					WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
			},
			expectedErr: ErrReferenced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPatientRepository(db)
			tt.setupMocks(mock)

			err := repo.Delete(context.Background(), uuid.New())

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatientRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPatientRepository(db)
	now := time.Now()

	columns := []string{
		"id", "first_name", "last_name", "national_id", "birth_date", "gender", "phone", "email",
		"address", "insurer_id", "active", "created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM patients`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY last_name, first_name, id`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			uuid.New().String(), "Ana", "Lopez", "0801", nil, "F", nil, nil, nil, nil, true, now, now,
		))

	patients, total, err := repo.List(context.Background(), domain.PageRequest{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, patients, 1)
	assert.Equal(t, "Ana Lopez", patients[0].FullName())
}

func TestQuotationRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuotationRepository(db)
	txm := NewTxManager(db)

	quotation := &domain.Quotation{ID: uuid.New(), UpdatedAt: time.Now()}
	quotation.Apply(&domain.QuotationRequest{
		PatientID: uuid.New(),
		Date:      time.Now(),
		Status:    domain.QuotationStatusSent,
		Items: []*domain.QuotationItemRequest{
			{ServiceID: uuid.New(), UnitPrice: decimal.NewFromInt(500), Quantity: 2},
		},
	})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quotations`)).
		WithArgs(quotation.ID, quotation.PatientID, sqlmock.AnyArg(), domain.QuotationStatusSent, "1000", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quotation_items`)).
		WithArgs(quotation.ID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quotation_items`)).
		WithArgs(quotation.Items[0].ID, quotation.ID, quotation.Items[0].ServiceID, "500", 2, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Update(ctx, quotation)
	})

	assert.NoError(t, err)
}

func TestQuotationRepository_UpdateStatus_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuotationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quotations SET status`)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), uuid.New(), domain.QuotationStatusAccepted, time.Now())

	assert.ErrorIs(t, err, sql.ErrNoRows)
}
