package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"caravan/internal/domain/models"
)

var (
	reservationCols = []string{
		"id", "code", "access_code", "responsible_name", "responsible_phone", "congregation",
		"seats_total", "seats_payable", "total_amount", "deposit_required", "amount_paid",
		"status", "payment_method", "is_host", "created_at",
	}
	passengerCols = []string{"id", "reservation_id", "name", "age", "is_free_under6", "seat_number", "congregation"}
	fixedTime     = time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
)

const (
	qReservationForUpdate = `FROM reservations WHERE id=\? LIMIT 1 FOR UPDATE`
	qPassengersOf         = `FROM reservation_passengers p WHERE p.reservation_id=\?`
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func reservationRows(rs ...models.Reservation) *sqlmock.Rows {
	rows := sqlmock.NewRows(reservationCols)
	for _, r := range rs {
		rows.AddRow(r.ID, r.Code, r.AccessCode, r.ResponsibleName, r.ResponsiblePhone, r.Congregation,
			r.SeatsTotal, r.SeatsPayable, r.TotalAmount, r.DepositRequired, r.AmountPaid,
			r.Status, r.PaymentMethod, r.IsHost, fixedTime)
	}
	return rows
}

func passengerRows(ps ...models.Passenger) *sqlmock.Rows {
	rows := sqlmock.NewRows(passengerCols)
	for _, p := range ps {
		var age any
		if p.Age != nil {
			age = int64(*p.Age)
		}
		rows.AddRow(p.ID, p.ReservationID, p.Name, age, p.IsFreeUnder6, p.SeatNumber, p.Congregation)
	}
	return rows
}

func intPtr(v int) *int { return &v }

func sampleReservation() models.Reservation {
	return models.Reservation{
		ID:               1,
		Code:             "VJ-ABC234",
		AccessCode:       "KEY234",
		ResponsibleName:  "Ana López",
		ResponsiblePhone: "5512345678",
		Congregation:     "Centro",
		SeatsTotal:       2,
		SeatsPayable:     2,
		TotalAmount:      3600,
		DepositRequired:  1800,
		Status:           "pendiente",
		PaymentMethod:    "efectivo",
	}
}

func adults(reservationID int64) []models.Passenger {
	return []models.Passenger{
		{ID: 10, ReservationID: reservationID, Name: "Ana López", Age: intPtr(34), SeatNumber: "1"},
		{ID: 11, ReservationID: reservationID, Name: "Luis López", Age: intPtr(36), SeatNumber: "2"},
	}
}

func sampleAdmin() models.AdminUser {
	return models.AdminUser{ID: 1, Name: "Admin", Email: "admin@example.com"}
}
