package domain

// ReservationStatus is the payment state of a reservation or attraction package.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pendiente"
	StatusDeposit   ReservationStatus = "anticipo_pagado"
	StatusPaid      ReservationStatus = "pagado_completo"
	StatusCancelled ReservationStatus = "cancelado"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDeposit, StatusPaid, StatusCancelled:
		return true
	default:
		return false
	}
}

// Payment methods accepted at the payment step.
const (
	MethodCash     = "efectivo"
	MethodTransfer = "transferencia"
	MethodCard     = "tarjeta"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard:
		return true
	default:
		return false
	}
}

// RequestContext carries the authenticated admin when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}
