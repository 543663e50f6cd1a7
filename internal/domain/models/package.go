package models

import "time"

// PackageReservation is an attraction add-on purchase loosely tied to a trip reservation code.
type PackageReservation struct {
	ID              int64     `json:"id"`
	ReservationCode string    `json:"reservation_code"`
	ReservationID   *int64    `json:"reservation_id"`
	PackageName     string    `json:"package_name"`
	ContactName     string    `json:"contact_name"`
	ContactPhone    string    `json:"contact_phone"`
	PeopleCount     int       `json:"people_count"`
	TotalAmount     int64     `json:"total_amount"`
	AmountPaid      int64     `json:"amount_paid"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// TicketOrder is a standalone attraction ticket order.
type TicketOrder struct {
	ID              int64     `json:"id"`
	ReservationCode string    `json:"reservation_code"`
	Attraction      string    `json:"attraction"`
	PeopleCount     int       `json:"people_count"`
	Amount          int64     `json:"amount"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
}
