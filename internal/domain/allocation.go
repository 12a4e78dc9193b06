package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation outcomes
const (
	// AllocationNone is reported for payments not tied to a financing.
	AllocationNone = "NONE"
	// AllocationApplied means the whole amount settled installments.
	AllocationApplied = "APPLIED"
	// AllocationPartial means installments were settled but a remainder
	// could not cover the next one.
	AllocationPartial = "PARTIAL"
	// AllocationUnapplied means the payment was recorded without settling
	// any installment.
	AllocationUnapplied = "UNAPPLIED"
)

// Allocation is the in-memory result of matching a payment amount against
// unpaid installments. Settled installments and the financing have already
// been mutated when it is returned.
type Allocation struct {
	Outcome   string
	Settled   []*Installment
	Remainder decimal.Decimal
}

func newAllocation(settled []*Installment, remainder decimal.Decimal) *Allocation {
	outcome := AllocationApplied
	switch {
	case len(settled) == 0:
		outcome = AllocationUnapplied
	case remainder.GreaterThan(decimal.Zero):
		outcome = AllocationPartial
	}

	if settled == nil {
		settled = []*Installment{}
	}

	return &Allocation{
		Outcome:   outcome,
		Settled:   settled,
		Remainder: remainder,
	}
}

// AllocateToInstallment applies amount to one targeted installment. Nothing
// is settled when inst is nil, belongs to another financing, is already
// paid, or costs more than amount.
func AllocateToInstallment(f *Financing, inst *Installment, paymentID uuid.UUID, amount decimal.Decimal, at time.Time) *Allocation {
	if inst == nil || inst.FinancingID != f.ID || inst.Paid || inst.Amount.GreaterThan(amount) {
		return newAllocation(nil, amount)
	}

	f.ApplyInstallment(inst, paymentID, at)

	return newAllocation([]*Installment{inst}, amount.Sub(inst.Amount))
}

// AllocateSequential settles unpaid installments in ascending number order
// while the remaining amount covers the next one, and stops at the first
// installment it cannot cover.
func AllocateSequential(f *Financing, unpaid []*Installment, paymentID uuid.UUID, amount decimal.Decimal, at time.Time) *Allocation {
	ordered := make([]*Installment, 0, len(unpaid))
	for _, inst := range unpaid {
		if inst.FinancingID == f.ID && !inst.Paid {
			ordered = append(ordered, inst)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	remaining := amount
	var settled []*Installment
	for _, inst := range ordered {
		if remaining.LessThan(inst.Amount) {
			break
		}
		f.ApplyInstallment(inst, paymentID, at)
		remaining = remaining.Sub(inst.Amount)
		settled = append(settled, inst)
	}

	return newAllocation(settled, remaining)
}
