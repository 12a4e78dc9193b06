package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/clinic-billing/pkg/utils"
)

const (
	PaymentStatusRegistered = "REGISTERED"
	PaymentStatusReverted   = "REVERTED"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodCheck    = "CHECK"
	PaymentMethodOther    = "OTHER"
)

// Payment is a recorded money receipt, optionally applied against a
// financing's installments.
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Method          string          `json:"method" db:"method"`
	Reference       *string         `json:"reference,omitempty" db:"reference"`
	Comment         *string         `json:"comment,omitempty" db:"comment"`
	Status          string          `json:"status" db:"status"`
	PatientID       *uuid.UUID      `json:"patient_id,omitempty" db:"patient_id"`
	PatientName     string          `json:"patient_name,omitempty" db:"patient_name"`
	ConsultationID  *uuid.UUID      `json:"consultation_id,omitempty" db:"consultation_id"`
	QuotationID     *uuid.UUID      `json:"quotation_id,omitempty" db:"quotation_id"`
	TreatmentPlanID *uuid.UUID      `json:"treatment_plan_id,omitempty" db:"treatment_plan_id"`
	FinancingID     *uuid.UUID      `json:"financing_id,omitempty" db:"financing_id"`
	PaidAt          time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type CreatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"decimal_gt=0,decimal_scale=2"`
	Method          string          `json:"method" validate:"required,oneof=CASH CARD TRANSFER CHECK OTHER"`
	Reference       *string         `json:"reference,omitempty" validate:"omitempty,max=255"`
	Comment         *string         `json:"comment,omitempty" validate:"omitempty,max=500"`
	PatientID       *uuid.UUID      `json:"patient_id,omitempty"`
	ConsultationID  *uuid.UUID      `json:"consultation_id,omitempty"`
	QuotationID     *uuid.UUID      `json:"quotation_id,omitempty"`
	TreatmentPlanID *uuid.UUID      `json:"treatment_plan_id,omitempty"`
	FinancingID     *uuid.UUID      `json:"financing_id,omitempty"`
	InstallmentID   *uuid.UUID      `json:"installment_id,omitempty"`
}

// PaymentReferences are the short display references shown in list views.
type PaymentReferences struct {
	Consultation string `json:"consultation,omitempty"`
	Quotation    string `json:"quotation,omitempty"`
	Financing    string `json:"financing,omitempty"`
}

// PaymentView is a payment plus its display references.
type PaymentView struct {
	*Payment
	References PaymentReferences `json:"references"`
}

// CreatePaymentResponse reports the stored payment and what the
// allocation did with its amount.
type CreatePaymentResponse struct {
	Payment         *PaymentView    `json:"payment"`
	Allocation      string          `json:"allocation"`
	Settled         []*Installment  `json:"settled_installments"`
	UnappliedAmount decimal.Decimal `json:"unapplied_amount"`
}

// NewPayment builds a REGISTERED payment from a validated request.
func NewPayment(req *CreatePaymentRequest, now time.Time) *Payment {
	return &Payment{
		ID:              uuid.New(),
		Amount:          req.Amount,
		Method:          req.Method,
		Reference:       req.Reference,
		Comment:         req.Comment,
		Status:          PaymentStatusRegistered,
		PatientID:       req.PatientID,
		ConsultationID:  req.ConsultationID,
		QuotationID:     req.QuotationID,
		TreatmentPlanID: req.TreatmentPlanID,
		FinancingID:     req.FinancingID,
		PaidAt:          now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsReverted reports whether the payment was reverted.
func (p *Payment) IsReverted() bool {
	return p.Status == PaymentStatusReverted
}

// View returns the payment with its display references resolved.
func (p *Payment) View() *PaymentView {
	view := &PaymentView{Payment: p}
	if p.ConsultationID != nil {
		view.References.Consultation = utils.ShortRef("Consulta", p.ConsultationID.String())
	}
	if p.QuotationID != nil {
		view.References.Quotation = utils.ShortRef("Cot.", p.QuotationID.String())
	}
	if p.FinancingID != nil {
		view.References.Financing = utils.ShortRef("Fin.", p.FinancingID.String())
	}
	return view
}

// Views maps payments to their views.
func Views(payments []*Payment) []*PaymentView {
	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, p.View())
	}
	return views
}
