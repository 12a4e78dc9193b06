package domain

import "github.com/google/uuid"

// View refresh events published after a billing change commits.
const (
	ViewEventFinancingCreated   = "financing.created"
	ViewEventFinancingCancelled = "financing.cancelled"
	ViewEventFinancingsOverdue  = "financings.overdue"
	ViewEventPaymentCreated     = "payment.created"
	ViewEventPaymentReverted    = "payment.reverted"
)

// ViewEvent tells the presentation layer which views are stale.
type ViewEvent struct {
	Type         string      `json:"type"`
	PatientID    *uuid.UUID  `json:"patient_id,omitempty"`
	FinancingIDs []uuid.UUID `json:"financing_ids,omitempty"`
	PaymentID    *uuid.UUID  `json:"payment_id,omitempty"`
}
