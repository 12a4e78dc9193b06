package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/clinic-billing/pkg/utils"
)

const (
	QuotationStatusDraft    = "draft"
	QuotationStatusSent     = "sent"
	QuotationStatusAccepted = "accepted"
	QuotationStatusRejected = "rejected"
	QuotationStatusPartial  = "partial"
)

// Quotation is a priced list of services offered to a patient.
type Quotation struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	PatientID   uuid.UUID        `json:"patient_id" db:"patient_id"`
	PatientName string           `json:"patient_name,omitempty" db:"patient_name"`
	Date        time.Time        `json:"date" db:"date"`
	Status      string           `json:"status" db:"status"`
	Total       decimal.Decimal  `json:"total" db:"total"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	Items       []*QuotationItem `json:"items" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// QuotationItem is one quoted service line.
type QuotationItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	QuotationID uuid.UUID       `json:"quotation_id" db:"quotation_id"`
	ServiceID   uuid.UUID       `json:"service_id" db:"service_id"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
}

type QuotationItemRequest struct {
	ServiceID uuid.UUID       `json:"service_id" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"decimal_gte=0,decimal_scale=2"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Notes     *string         `json:"notes,omitempty" validate:"omitempty,max=255"`
}

type QuotationRequest struct {
	PatientID uuid.UUID               `json:"patient_id" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    string                  `json:"status" validate:"required,oneof=draft sent accepted rejected partial"`
	Notes     *string                 `json:"notes,omitempty" validate:"omitempty,max=255"`
	Items     []*QuotationItemRequest `json:"items" validate:"dive"`
}

type QuotationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent accepted rejected partial"`
}

// Apply replaces the quotation fields and items with the request and
// recomputes the total from the items.
func (q *Quotation) Apply(req *QuotationRequest) {
	q.PatientID = req.PatientID
	q.Date = req.Date
	q.Status = req.Status
	q.Notes = req.Notes

	q.Items = make([]*QuotationItem, 0, len(req.Items))
	for _, item := range req.Items {
		q.Items = append(q.Items, &QuotationItem{
			ID:          uuid.New(),
			QuotationID: q.ID,
			ServiceID:   item.ServiceID,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Notes:       item.Notes,
		})
	}
	q.Total = q.ItemsTotal()
}

// ItemsTotal sums unit price times quantity over the items.
func (q *Quotation) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range q.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return utils.RoundMoney(total)
}
