package models

import "time"

// Payment is an append-only payment row of a reservation.
type Payment struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentInput is the payload accepted by both payment registration paths.
type PaymentInput struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

// PaymentReceipt is what a payment registration returns to the caller.
type PaymentReceipt struct {
	PaymentID   int64  `json:"payment_id"`
	ParentID    int64  `json:"parent_id"`
	AmountPaid  int64  `json:"amount_paid"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
}
