package models

// Passenger is an individual traveler attached to a reservation.
type Passenger struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservation_id"`
	Name          string `json:"name"`
	Age           *int   `json:"age"`
	IsFreeUnder6  bool   `json:"is_free_under6"`
	SeatNumber    string `json:"seat_number,omitempty"`
	Congregation  string `json:"congregation,omitempty"`
}

// PassengerInput carries passenger data coming from the booking flow or admin forms.
type PassengerInput struct {
	Name         string `json:"name"`
	Age          *int   `json:"age"`
	SeatNumber   string `json:"seat_number"`
	Congregation string `json:"congregation"`
}

// OccupiedSeat is a seat number already taken by a non-cancelled reservation.
type OccupiedSeat struct {
	SeatNumber      string `json:"seat_number"`
	PassengerID     int64  `json:"passenger_id"`
	PassengerName   string `json:"passenger_name"`
	ReservationID   int64  `json:"reservation_id"`
	ReservationCode string `json:"reservation_code"`
}
