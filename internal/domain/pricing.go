package domain

// UnitPrice is the canonical price of one payable seat in pesos.
const UnitPrice int64 = 1800

// LegacyUnitPrice is the seat price one old booking path used. Rows whose total
// matches it are flagged by reconciliation, never used for new totals.
const LegacyUnitPrice int64 = 1700

// FreeUnderAge is the age below which a passenger travels without paying a seat.
const FreeUnderAge = 6

// DepositPercent is the share of the total that counts as the deposit (anticipo).
const DepositPercent = 50

// IsFreeUnder6 reports whether a passenger with the given age rides free.
// A missing age is treated as payable.
func IsFreeUnder6(age *int) bool {
	return age != nil && *age < FreeUnderAge
}

// ComputeTotals returns the total amount and the required deposit for a number
// of payable seats. The deposit is rounded up to the next whole peso.
func ComputeTotals(payableSeats int, unitPrice int64) (total, deposit int64) {
	if payableSeats <= 0 || unitPrice <= 0 {
		return 0, 0
	}
	total = int64(payableSeats) * unitPrice
	return total, DepositFor(total)
}

// DepositFor returns ceil(total * DepositPercent / 100).
func DepositFor(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total*DepositPercent + 99) / 100
}

// DeriveStatus computes the payment status from the amount paid. A cancelled
// record stays cancelled.
func DeriveStatus(current ReservationStatus, amountPaid, total, deposit int64) ReservationStatus {
	if current == StatusCancelled {
		return StatusCancelled
	}
	switch {
	case total > 0 && amountPaid >= total:
		return StatusPaid
	case deposit > 0 && amountPaid >= deposit:
		return StatusDeposit
	default:
		return StatusPending
	}
}
