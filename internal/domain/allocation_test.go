package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateToInstallment(t *testing.T) {
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("exact amount settles the installment", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)
		paymentID := uuid.New()

		alloc := AllocateToInstallment(financing, installments[0], paymentID, decimal.NewFromInt(2000), at)

		assert.Equal(t, AllocationApplied, alloc.Outcome)
		require.Len(t, alloc.Settled, 1)
		assert.True(t, alloc.Remainder.IsZero())
		assert.True(t, installments[0].Paid)
		assert.True(t, financing.Balance.Equal(decimal.NewFromInt(6000)))
		assert.Equal(t, FinancingStatusActive, financing.Status)
	})

	t.Run("overpayment settles and reports the remainder", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

		alloc := AllocateToInstallment(financing, installments[1], uuid.New(), decimal.NewFromInt(2500), at)

		assert.Equal(t, AllocationPartial, alloc.Outcome)
		assert.True(t, alloc.Remainder.Equal(decimal.NewFromInt(500)))
		assert.True(t, financing.Balance.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("last installment pays off the financing", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(4000, 2000, 0, 1), at)

		alloc := AllocateToInstallment(financing, installments[0], uuid.New(), decimal.NewFromInt(2000), at)

		assert.Equal(t, AllocationApplied, alloc.Outcome)
		assert.Equal(t, FinancingStatusPaid, financing.Status)
	})

	tests := []struct {
		name   string
		target func(f *Financing, insts []*Installment) *Installment
		amount int64
	}{
		{
			name:   "missing installment",
			target: func(*Financing, []*Installment) *Installment { return nil },
			amount: 2000,
		},
		{
			name: "already paid installment",
			target: func(f *Financing, insts []*Installment) *Installment {
				f.ApplyInstallment(insts[0], uuid.New(), at)
				return insts[0]
			},
			amount: 2000,
		},
		{
			name:   "amount below installment",
			target: func(_ *Financing, insts []*Installment) *Installment { return insts[0] },
			amount: 1999,
		},
		{
			name: "installment of another financing",
			target: func(_ *Financing, insts []*Installment) *Installment {
				other := *insts[0]
				other.FinancingID = uuid.New()
				return &other
			},
			amount: 2000,
		},
	}

	for _, tt := range tests {
		t.Run("unapplied: "+tt.name, func(t *testing.T) {
			financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)
			target := tt.target(financing, installments)
			balanceBefore := financing.Balance

			alloc := AllocateToInstallment(financing, target, uuid.New(), decimal.NewFromInt(tt.amount), at)

			assert.Equal(t, AllocationUnapplied, alloc.Outcome)
			assert.Empty(t, alloc.Settled)
			assert.True(t, alloc.Remainder.Equal(decimal.NewFromInt(tt.amount)))
			assert.True(t, financing.Balance.Equal(balanceBefore))
		})
	}
}

func TestAllocateSequential(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("k installments worth settles the first k in order", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

		// hand them over out of order
		unpaid := []*Installment{installments[3], installments[1], installments[0], installments[2]}
		alloc := AllocateSequential(financing, unpaid, uuid.New(), decimal.NewFromInt(4000), at)

		assert.Equal(t, AllocationApplied, alloc.Outcome)
		require.Len(t, alloc.Settled, 2)
		assert.Equal(t, 1, alloc.Settled[0].Number)
		assert.Equal(t, 2, alloc.Settled[1].Number)
		assert.False(t, installments[2].Paid)
		assert.False(t, installments[3].Paid)
		assert.True(t, financing.Balance.Equal(decimal.NewFromInt(4000)))
	})

	t.Run("remainder smaller than next installment stops allocation", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

		alloc := AllocateSequential(financing, installments, uuid.New(), decimal.NewFromInt(3000), at)

		assert.Equal(t, AllocationPartial, alloc.Outcome)
		require.Len(t, alloc.Settled, 1)
		assert.True(t, alloc.Remainder.Equal(decimal.NewFromInt(1000)))
		assert.True(t, financing.Balance.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("amount below first installment is unapplied", func(t *testing.T) {
		financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

		alloc := AllocateSequential(financing, installments, uuid.New(), decimal.NewFromInt(500), at)

		assert.Equal(t, AllocationUnapplied, alloc.Outcome)
		assert.Empty(t, alloc.Settled)
		assert.True(t, financing.Balance.Equal(decimal.NewFromInt(8000)))
	})

	t.Run("no unpaid installments", func(t *testing.T) {
		financing, _ := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

		alloc := AllocateSequential(financing, nil, uuid.New(), decimal.NewFromInt(500), at)

		assert.Equal(t, AllocationUnapplied, alloc.Outcome)
	})
}

// Targeted payment of 2000 on #1, then an untargeted 6000 settles #2-#4.
func TestAllocation_TargetedThenSequential(t *testing.T) {
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	financing, installments := NewFinancing(newFinancingRequest(10000, 2000, 0, 4), at)

	first := AllocateToInstallment(financing, installments[0], uuid.New(), decimal.NewFromInt(2000), at)
	require.Equal(t, AllocationApplied, first.Outcome)
	assert.True(t, financing.Balance.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, FinancingStatusActive, financing.Status)

	var unpaid []*Installment
	for _, inst := range installments {
		if !inst.Paid {
			unpaid = append(unpaid, inst)
		}
	}

	second := AllocateSequential(financing, unpaid, uuid.New(), decimal.NewFromInt(6000), at)
	assert.Equal(t, AllocationApplied, second.Outcome)
	require.Len(t, second.Settled, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{second.Settled[0].Number, second.Settled[1].Number, second.Settled[2].Number})
	assert.True(t, financing.Balance.IsZero())
	assert.Equal(t, FinancingStatusPaid, financing.Status)
}
