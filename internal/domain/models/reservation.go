package models

import "time"

// Reservation is one booking for a responsible person and their travel party.
type Reservation struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	AccessCode       string    `json:"access_code,omitempty"`
	ResponsibleName  string    `json:"responsible_name"`
	ResponsiblePhone string    `json:"responsible_phone"`
	Congregation     string    `json:"congregation"`
	SeatsTotal       int       `json:"seats_total"`
	SeatsPayable     int       `json:"seats_payable"`
	TotalAmount      int64     `json:"total_amount"`
	DepositRequired  int64     `json:"deposit_required"`
	AmountPaid       int64     `json:"amount_paid"`
	Status           string    `json:"status"`
	PaymentMethod    string    `json:"payment_method"`
	IsHost           bool      `json:"is_host"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReservationDetail bundles a reservation with its passengers and payments.
type ReservationDetail struct {
	Reservation
	Passengers []Passenger `json:"passengers"`
	Payments   []Payment   `json:"payments"`
}

// ReservationAggregates are the denormalized fields recomputed from passenger rows.
type ReservationAggregates struct {
	SeatsTotal      int
	SeatsPayable    int
	TotalAmount     int64
	DepositRequired int64
	Status          string
}
