package domain

import "caravan/internal/domain/models"

// PassengerFix is a corrected free-under-6 flag for one passenger row.
type PassengerFix struct {
	PassengerID  int64 `json:"passenger_id"`
	IsFreeUnder6 bool  `json:"is_free_under6"`
}

// ReconcilePlan lists the writes needed to make a reservation consistent with
// its passenger rows. An empty plan means nothing has to be written.
type ReconcilePlan struct {
	ReservationID     int64                        `json:"reservation_id"`
	PassengerFixes    []PassengerFix               `json:"passenger_fixes,omitempty"`
	Aggregates        models.ReservationAggregates `json:"-"`
	UpdateReservation bool                         `json:"update_reservation"`
	ChangedFields     []string                     `json:"changed_fields,omitempty"`
	LegacyPriced      bool                         `json:"legacy_priced,omitempty"`
}

// Empty reports whether the plan requires no writes.
func (p ReconcilePlan) Empty() bool {
	return len(p.PassengerFixes) == 0 && !p.UpdateReservation
}

// Reconcile recomputes a reservation's aggregates from its passengers.
// Passengers belonging to other reservations are ignored.
func Reconcile(r models.Reservation, passengers []models.Passenger, unitPrice int64) ReconcilePlan {
	plan := ReconcilePlan{ReservationID: r.ID}

	total, payable := 0, 0
	for _, p := range passengers {
		if p.ReservationID != r.ID {
			continue
		}
		free := IsFreeUnder6(p.Age)
		if free != p.IsFreeUnder6 {
			plan.PassengerFixes = append(plan.PassengerFixes, PassengerFix{PassengerID: p.ID, IsFreeUnder6: free})
		}
		total++
		if !free {
			payable++
		}
	}

	amount, deposit := ComputeTotals(payable, unitPrice)
	status := DeriveStatus(ReservationStatus(r.Status), r.AmountPaid, amount, deposit)
	plan.Aggregates = models.ReservationAggregates{
		SeatsTotal:      total,
		SeatsPayable:    payable,
		TotalAmount:     amount,
		DepositRequired: deposit,
		Status:          string(status),
	}

	if r.SeatsTotal != total {
		plan.ChangedFields = append(plan.ChangedFields, "seats_total")
	}
	if r.SeatsPayable != payable {
		plan.ChangedFields = append(plan.ChangedFields, "seats_payable")
	}
	if r.TotalAmount != amount {
		plan.ChangedFields = append(plan.ChangedFields, "total_amount")
		if payable > 0 && r.TotalAmount == int64(payable)*LegacyUnitPrice {
			plan.LegacyPriced = true
		}
	}
	if r.DepositRequired != deposit {
		plan.ChangedFields = append(plan.ChangedFields, "deposit_required")
	}
	if ReservationStatus(r.Status) != StatusCancelled && r.Status != string(status) {
		plan.ChangedFields = append(plan.ChangedFields, "status")
	}
	plan.UpdateReservation = len(plan.ChangedFields) > 0
	return plan
}

// Apply returns the reservation and passengers with the plan's corrections applied.
func (p ReconcilePlan) Apply(r models.Reservation, passengers []models.Passenger) (models.Reservation, []models.Passenger) {
	fixes := make(map[int64]bool, len(p.PassengerFixes))
	for _, f := range p.PassengerFixes {
		fixes[f.PassengerID] = f.IsFreeUnder6
	}
	out := make([]models.Passenger, len(passengers))
	for i, ps := range passengers {
		if v, ok := fixes[ps.ID]; ok {
			ps.IsFreeUnder6 = v
		}
		out[i] = ps
	}
	if p.UpdateReservation {
		r.SeatsTotal = p.Aggregates.SeatsTotal
		r.SeatsPayable = p.Aggregates.SeatsPayable
		r.TotalAmount = p.Aggregates.TotalAmount
		r.DepositRequired = p.Aggregates.DepositRequired
		if ReservationStatus(r.Status) != StatusCancelled {
			r.Status = p.Aggregates.Status
		}
	}
	return r, out
}
