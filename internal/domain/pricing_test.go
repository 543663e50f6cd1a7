package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestIsFreeUnder6(t *testing.T) {
	assert.True(t, IsFreeUnder6(intPtr(0)))
	assert.True(t, IsFreeUnder6(intPtr(5)))
	assert.False(t, IsFreeUnder6(intPtr(6)))
	assert.False(t, IsFreeUnder6(intPtr(40)))
	assert.False(t, IsFreeUnder6(nil))
}

func TestComputeTotals(t *testing.T) {
	total, deposit := ComputeTotals(3, UnitPrice)
	assert.Equal(t, int64(5400), total)
	assert.Equal(t, int64(2700), deposit)

	total, deposit = ComputeTotals(0, UnitPrice)
	assert.Zero(t, total)
	assert.Zero(t, deposit)

	// odd totals round the deposit up
	total, deposit = ComputeTotals(1, 1801)
	assert.Equal(t, int64(1801), total)
	assert.Equal(t, int64(901), deposit)
}

func TestDeriveStatusThresholds(t *testing.T) {
	total, deposit := ComputeTotals(3, UnitPrice)

	cases := []struct {
		name string
		cur  ReservationStatus
		paid int64
		want ReservationStatus
	}{
		{"nothing paid", StatusPending, 0, StatusPending},
		{"below deposit", StatusPending, 2699, StatusPending},
		{"exact deposit", StatusPending, 2700, StatusDeposit},
		{"between", StatusPending, 5399, StatusDeposit},
		{"full", StatusDeposit, 5400, StatusPaid},
		{"overpaid", StatusPending, 9000, StatusPaid},
		{"paid status drops when total grows", StatusPaid, 2700, StatusDeposit},
		{"cancelled is sticky", StatusCancelled, 5400, StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.cur, tc.paid, total, deposit))
		})
	}
}

func TestDeriveStatusZeroTotal(t *testing.T) {
	// a reservation of only small children owes nothing but is not "paid"
	assert.Equal(t, StatusPending, DeriveStatus(StatusPaid, 0, 0, 0))
}
