package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/clinic-billing/pkg/utils"
)

const (
	FinancingStatusActive    = "ACTIVE"
	FinancingStatusPaid      = "PAID"
	FinancingStatusOverdue   = "OVERDUE"
	FinancingStatusCancelled = "CANCELLED"
)

// Financing is an installment plan covering a patient's balance after the
// down payment. Balance starts at the pre-interest principal and is
// decremented by every installment amount that gets paid.
type Financing struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	PatientID        uuid.UUID       `json:"patient_id" db:"patient_id"`
	PatientName      string          `json:"patient_name,omitempty" db:"patient_name"`
	QuotationID      *uuid.UUID      `json:"quotation_id,omitempty" db:"quotation_id"`
	TreatmentPlanID  *uuid.UUID      `json:"treatment_plan_id,omitempty" db:"treatment_plan_id"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	DownPayment      decimal.Decimal `json:"down_payment" db:"down_payment"`
	Balance          decimal.Decimal `json:"balance" db:"balance"`
	InterestRate     decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InstallmentCount int             `json:"installment_count" db:"installment_count"`
	StartDate        time.Time       `json:"start_date" db:"start_date"`
	EndDate          *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Status           string          `json:"status" db:"status"`
	Version          int             `json:"version" db:"version"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Installment is one scheduled fractional payment of a financing.
type Installment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	FinancingID uuid.UUID       `json:"financing_id" db:"financing_id"`
	Number      int             `json:"number" db:"number"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Paid        bool            `json:"paid" db:"paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty" db:"payment_id"`
}

// DTOs for requests and responses

type CreateFinancingRequest struct {
	PatientID        uuid.UUID       `json:"patient_id" validate:"required"`
	QuotationID      *uuid.UUID      `json:"quotation_id,omitempty"`
	TreatmentPlanID  *uuid.UUID      `json:"treatment_plan_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount" validate:"decimal_gt=0,decimal_scale=2"`
	DownPayment      decimal.Decimal `json:"down_payment" validate:"decimal_gte=0,decimal_scale=2"`
	InterestRate     decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,decimal_scale=4"`
	InstallmentCount int             `json:"installment_count" validate:"required,gte=1,lte=360"`
	StartDate        time.Time       `json:"start_date" validate:"required"`
}

// FinancingDetail is the financing view with its ordered installments.
type FinancingDetail struct {
	*Financing
	Installments []*Installment  `json:"installments"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

// NewFinancing builds an ACTIVE financing and its installment schedule from
// a validated request. principal is TotalAmount - DownPayment and must be
// positive; callers check that before calling.
func NewFinancing(req *CreateFinancingRequest, now time.Time) (*Financing, []*Installment) {
	principal := req.TotalAmount.Sub(req.DownPayment)

	financing := &Financing{
		ID:               uuid.New(),
		PatientID:        req.PatientID,
		QuotationID:      req.QuotationID,
		TreatmentPlanID:  req.TreatmentPlanID,
		TotalAmount:      req.TotalAmount,
		DownPayment:      req.DownPayment,
		Balance:          principal,
		InterestRate:     req.InterestRate,
		InstallmentCount: req.InstallmentCount,
		StartDate:        req.StartDate,
		Status:           FinancingStatusActive,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	financed := utils.CalculateFinancedAmount(principal, req.InterestRate)
	installments := BuildSchedule(financing.ID, financed, req.InstallmentCount, req.StartDate)
	if len(installments) > 0 {
		end := installments[len(installments)-1].DueDate
		financing.EndDate = &end
	}

	return financing, installments
}

// BuildSchedule splits financed into count monthly installments numbered
// from 1, the first due one calendar month after start.
func BuildSchedule(financingID uuid.UUID, financed decimal.Decimal, count int, start time.Time) []*Installment {
	amounts := utils.SplitAmount(financed, count)

	installments := make([]*Installment, 0, count)
	for i, amount := range amounts {
		number := i + 1
		installments = append(installments, &Installment{
			ID:          uuid.New(),
			FinancingID: financingID,
			Number:      number,
			Amount:      amount,
			DueDate:     utils.CalculateDueDate(start, number),
		})
	}

	return installments
}

// IsSettled reports whether the balance has been paid off.
func (f *Financing) IsSettled() bool {
	return f.Balance.LessThanOrEqual(decimal.Zero)
}

// IsCancelled reports whether the financing was cancelled.
func (f *Financing) IsCancelled() bool {
	return f.Status == FinancingStatusCancelled
}

func (f *Financing) refreshStatus() {
	if f.IsCancelled() {
		return
	}
	if f.IsSettled() {
		f.Status = FinancingStatusPaid
	} else {
		f.Status = FinancingStatusActive
	}
}

// ApplyInstallment marks inst as paid by paymentID and takes its amount off
// the balance.
func (f *Financing) ApplyInstallment(inst *Installment, paymentID uuid.UUID, at time.Time) {
	paidAt := at
	pid := paymentID

	inst.Paid = true
	inst.PaidAt = &paidAt
	inst.PaymentID = &pid

	f.Balance = f.Balance.Sub(inst.Amount)
	f.refreshStatus()
	f.UpdatedAt = at
}

// RestoreInstallments undoes the payment of every installment in insts and
// returns the amount added back to the balance. The status is recomputed
// from the restored balance.
func (f *Financing) RestoreInstallments(insts []*Installment, at time.Time) decimal.Decimal {
	restored := decimal.Zero
	for _, inst := range insts {
		inst.Paid = false
		inst.PaidAt = nil
		inst.PaymentID = nil
		restored = restored.Add(inst.Amount)
	}

	f.Balance = f.Balance.Add(restored)
	f.refreshStatus()
	f.UpdatedAt = at

	return restored
}

// Cancel moves an ACTIVE or OVERDUE financing to CANCELLED.
func (f *Financing) Cancel(at time.Time) bool {
	if f.Status != FinancingStatusActive && f.Status != FinancingStatusOverdue {
		return false
	}
	f.Status = FinancingStatusCancelled
	f.UpdatedAt = at
	return true
}

// NewFinancingDetail assembles the detail view. TotalPaid is the down
// payment plus every paid installment.
func NewFinancingDetail(f *Financing, installments []*Installment) *FinancingDetail {
	totalPaid := f.DownPayment
	for _, inst := range installments {
		if inst.Paid {
			totalPaid = totalPaid.Add(inst.Amount)
		}
	}

	if installments == nil {
		installments = []*Installment{}
	}

	return &FinancingDetail{
		Financing:    f,
		Installments: installments,
		TotalPaid:    totalPaid,
	}
}
