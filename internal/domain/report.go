package domain

import "caravan/internal/domain/models"

// FinancialSummary aggregates money figures over reservations. Host
// reservations never count, whatever their amount fields say.
type FinancialSummary struct {
	Reservations   int            `json:"reservations"`
	Seats          int            `json:"seats"`
	PayableSeats   int            `json:"payable_seats"`
	TotalExpected  int64          `json:"total_expected"`
	TotalCollected int64          `json:"total_collected"`
	TotalPending   int64          `json:"total_pending"`
	PendingCount   int            `json:"pending_count"`
	ByStatus       map[string]int `json:"by_status"`
	HostsExcluded  int            `json:"hosts_excluded"`
}

// Summarize builds the financial summary. Cancelled reservations are counted
// by status only. PendingCount counts reservations that are not fully paid,
// so deposit-paid ones are included.
func Summarize(reservations []models.Reservation) FinancialSummary {
	s := FinancialSummary{ByStatus: map[string]int{}}
	for _, r := range reservations {
		if r.IsHost {
			s.HostsExcluded++
			continue
		}
		s.ByStatus[r.Status]++
		if ReservationStatus(r.Status) == StatusCancelled {
			continue
		}
		s.Reservations++
		s.Seats += r.SeatsTotal
		s.PayableSeats += r.SeatsPayable
		s.TotalExpected += r.TotalAmount
		s.TotalCollected += r.AmountPaid
		if r.AmountPaid < r.TotalAmount {
			s.TotalPending += r.TotalAmount - r.AmountPaid
		}
		if ReservationStatus(r.Status) != StatusPaid {
			s.PendingCount++
		}
	}
	return s
}
