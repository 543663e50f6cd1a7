package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "caravan/internal/config"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/events"
)

func validRequest() CreateReservationRequest {
	return CreateReservationRequest{
		ResponsibleName:  "  Ana   López ",
		ResponsiblePhone: "55 1234 5678",
		Congregation:     "Centro",
		PaymentMethod:    "efectivo",
		Passengers: []models.PassengerInput{
			{Name: "Ana López", Age: intPtr(34), SeatNumber: "1"},
			{Name: "Beto López", Age: intPtr(3)},
		},
	}
}

func TestCreateReservationValidation(t *testing.T) {
	svc := BookingService{}
	ctx := context.Background()

	req := validRequest()
	req.ResponsiblePhone = "12345"
	_, err := svc.CreateReservation(ctx, req)
	assert.True(t, domain.IsValidation(err), "short phone")

	req = validRequest()
	req.Passengers = nil
	_, err = svc.CreateReservation(ctx, req)
	assert.True(t, domain.IsValidation(err), "no passengers")

	req = validRequest()
	req.Passengers[1].SeatNumber = " 1 "
	_, err = svc.CreateReservation(ctx, req)
	assert.True(t, domain.IsValidation(err), "repeated seat")

	req = validRequest()
	req.Congregation = ""
	_, err = svc.CreateReservation(ctx, req)
	assert.True(t, domain.IsValidation(err), "missing congregation")

	req = validRequest()
	req.Passengers[0].Age = intPtr(-1)
	_, err = svc.CreateReservation(ctx, req)
	assert.True(t, domain.IsValidation(err), "negative age")
}

func TestCreateReservationStoresEverythingInOneTransaction(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WithArgs("1", int64(0)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations WHERE code=\?`).
		WithArgs("VJ-TEST23").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs("VJ-TEST23", "ACC234", "Ana López", "5512345678", "Centro",
			2, 1, int64(1800), int64(900), int64(0), "pendiente", "efectivo", false).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`INSERT INTO reservation_passengers`).
		WithArgs(int64(5), "Ana López", 34, false, "1", "Centro").
		WillReturnResult(sqlmock.NewResult(50, 1))
	mock.ExpectExec(`INSERT INTO reservation_passengers`).
		WithArgs(int64(5), "Beto López", 3, true, nil, "Centro").
		WillReturnResult(sqlmock.NewResult(51, 1))

	stored := models.Reservation{
		ID: 5, Code: "VJ-TEST23", AccessCode: "ACC234", ResponsibleName: "Ana López",
		ResponsiblePhone: "5512345678", Congregation: "Centro", SeatsTotal: 2, SeatsPayable: 1,
		TotalAmount: 1800, DepositRequired: 900, Status: "pendiente", PaymentMethod: "efectivo",
	}
	mock.ExpectQuery(qReservationForUpdate).WithArgs(int64(5)).WillReturnRows(reservationRows(stored))
	mock.ExpectQuery(qPassengersOf).WithArgs(int64(5)).WillReturnRows(passengerRows(
		models.Passenger{ID: 50, ReservationID: 5, Name: "Ana López", Age: intPtr(34), SeatNumber: "1"},
		models.Passenger{ID: 51, ReservationID: 5, Name: "Beto López", Age: intPtr(3), IsFreeUnder6: true},
	))
	mock.ExpectCommit()

	rec := &events.Recorder{}
	svc := BookingService{
		DB:        db,
		Pricing:   intconfig.Pricing{UnitPrice: 1800, ContactPhone: "5598765432", TripName: "Betel 2025"},
		Events:    rec,
		PublicURL: "https://viaje.example.com/",
		NewCode:   func() string { return "VJ-TEST23" },
		NewAccess: func() string { return "ACC234" },
	}
	conf, err := svc.CreateReservation(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "VJ-TEST23", conf.Reservation.Code)
	assert.Equal(t, 1, conf.Reservation.SeatsPayable)
	assert.Equal(t, int64(900), conf.Reservation.DepositRequired)
	require.Len(t, conf.Reservation.Passengers, 2)
	assert.True(t, conf.Reservation.Passengers[1].IsFreeUnder6)
	assert.True(t, strings.HasPrefix(conf.WhatsAppURL, "https://wa.me/525598765432?text="))
	assert.Equal(t, "https://viaje.example.com/api/public/reservations/VJ-TEST23/ticket?access_code=ACC234", conf.TicketURL)
	assert.Equal(t, []string{events.TopicReservationCreated}, rec.Topics())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationRejectsTakenSeat(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WithArgs("1", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "id", "name", "rid", "code"}).
			AddRow("1", 77, "Otro", 3, "VJ-OTHER2"))
	mock.ExpectRollback()

	_, err := BookingService{DB: db}.CreateReservation(context.Background(), validRequest())
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationRespectsCapacity(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservation_passengers p`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(44))
	mock.ExpectRollback()

	svc := BookingService{DB: db, Pricing: intconfig.Pricing{SeatCapacity: 45}}
	_, err := svc.CreateReservation(context.Background(), validRequest())
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupHidesWrongAccessCode(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()

	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(res))

	_, err := BookingService{DB: db}.Lookup(context.Background(), "vj-abc234", "WRONG1")
	assert.True(t, domain.IsNotFound(err))
}

func TestLookupReturnsDetail(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()

	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(res))
	mock.ExpectQuery(qPassengersOf).WithArgs(res.ID).WillReturnRows(passengerRows(adults(res.ID)...))
	mock.ExpectQuery(`FROM payments WHERE reservation_id=\?`).WithArgs(res.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "amount", "method", "reference", "created_at"}).
			AddRow(1, res.ID, 500, "efectivo", "", fixedTime))

	d, err := BookingService{DB: db}.Lookup(context.Background(), "VJ-ABC234", "key234")
	require.NoError(t, err)
	assert.Len(t, d.Passengers, 2)
	assert.Len(t, d.Payments, 1)
}

func TestCancelIsSticky(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()

	mock.ExpectBegin()
	mock.ExpectQuery(qReservationForUpdate).WithArgs(res.ID).WillReturnRows(reservationRows(res))
	mock.ExpectExec(`UPDATE reservations SET status=\? WHERE id=\?`).
		WithArgs("cancelado", res.ID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := BookingService{DB: db}.Cancel(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelado", out.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func replacement() []models.PassengerInput {
	return []models.PassengerInput{
		{Name: " Ana López ", Age: intPtr(34), SeatNumber: "1"},
		{Name: "Beto López", Age: intPtr(3)},
		{Name: "Carla López", Age: intPtr(30), SeatNumber: "3", Congregation: "Norte"},
	}
}

func TestReplacePassengersSwapsListAndReconciles(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()
	seatCols := []string{"seat_number", "id", "name", "rid", "code"}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(res))
	mock.ExpectQuery(qReservationForUpdate).WithArgs(res.ID).WillReturnRows(reservationRows(res))
	// seat 1 already belongs to this reservation
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WithArgs("1", int64(0)).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow("1", 10, "Ana López", res.ID, res.Code))
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WithArgs("3", int64(0)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qPassengersOf).WithArgs(res.ID).WillReturnRows(passengerRows(adults(res.ID)...))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservation_passengers p`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(10))
	mock.ExpectExec(`UPDATE tour_groups SET captain_passenger_id=NULL`).WithArgs(res.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM tour_group_members WHERE reservation_id=\?`).WithArgs(res.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM reservation_passengers WHERE reservation_id=\?`).WithArgs(res.ID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO reservation_passengers`).
		WithArgs(res.ID, "Ana López", 34, false, "1", "Centro").WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec(`INSERT INTO reservation_passengers`).
		WithArgs(res.ID, "Beto López", 3, true, nil, "Centro").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(`INSERT INTO reservation_passengers`).
		WithArgs(res.ID, "Carla López", 30, false, "3", "Norte").WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectQuery(qReservationForUpdate).WithArgs(res.ID).WillReturnRows(reservationRows(res))
	mock.ExpectQuery(qPassengersOf).WithArgs(res.ID).WillReturnRows(passengerRows(
		models.Passenger{ID: 20, ReservationID: res.ID, Name: "Ana López", Age: intPtr(34), SeatNumber: "1", Congregation: "Centro"},
		models.Passenger{ID: 21, ReservationID: res.ID, Name: "Beto López", Age: intPtr(3), IsFreeUnder6: true, Congregation: "Centro"},
		models.Passenger{ID: 22, ReservationID: res.ID, Name: "Carla López", Age: intPtr(30), SeatNumber: "3", Congregation: "Norte"},
	))
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(3, 2, int64(3600), int64(1800), "pendiente", res.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM payments WHERE reservation_id=\?`).WithArgs(res.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "amount", "method", "reference", "created_at"}))
	mock.ExpectCommit()

	svc := BookingService{DB: db, Pricing: intconfig.Pricing{UnitPrice: 1800, SeatCapacity: 45}}
	d, err := svc.ReplacePassengers(context.Background(), "vj-abc234", "key234", replacement())
	require.NoError(t, err)
	assert.Equal(t, 3, d.SeatsTotal)
	assert.Equal(t, 2, d.SeatsPayable)
	require.Len(t, d.Passengers, 3)
	assert.Equal(t, int64(21), d.Passengers[1].ID)
	assert.True(t, d.Passengers[1].IsFreeUnder6)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePassengersRejectsWrongAccessCode(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(sampleReservation()))
	mock.ExpectRollback()

	_, err := BookingService{DB: db}.ReplacePassengers(context.Background(), "VJ-ABC234", "NOPE99", replacement())
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePassengersRejectsCancelled(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()
	cancelled := res
	cancelled.Status = "cancelado"

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(res))
	mock.ExpectQuery(qReservationForUpdate).WithArgs(res.ID).WillReturnRows(reservationRows(cancelled))
	mock.ExpectRollback()

	_, err := BookingService{DB: db}.ReplacePassengers(context.Background(), "VJ-ABC234", "KEY234", replacement())
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePassengersRejectsSeatOfAnotherReservation(t *testing.T) {
	db, mock := newMock(t)
	res := sampleReservation()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").WillReturnRows(reservationRows(res))
	mock.ExpectQuery(qReservationForUpdate).WithArgs(res.ID).WillReturnRows(reservationRows(res))
	mock.ExpectQuery(`WHERE p.seat_number=\?`).WithArgs("1", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "id", "name", "rid", "code"}).
			AddRow("1", 77, "Otro", 3, "VJ-OTHER2"))
	mock.ExpectRollback()

	_, err := BookingService{DB: db}.ReplacePassengers(context.Background(), "VJ-ABC234", "KEY234", replacement())
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePassengersRequiresOne(t *testing.T) {
	_, err := BookingService{}.ReplacePassengers(context.Background(), "VJ-ABC234", "KEY234", nil)
	assert.True(t, domain.IsValidation(err))
}

func TestStepsSkipPassengersForSingleAdult(t *testing.T) {
	steps, err := BookingService{}.Steps(1, 0)
	require.NoError(t, err)
	assert.NotContains(t, steps, domain.StepPassengers)

	steps, err = BookingService{}.Steps(1, 1)
	require.NoError(t, err)
	assert.Contains(t, steps, domain.StepPassengers)

	_, err = BookingService{}.Steps(0, 2)
	assert.True(t, domain.IsValidation(err))
}

func TestNewCodesUseReadableAlphabet(t *testing.T) {
	code := NewReservationCode()
	require.Len(t, code, 9)
	assert.True(t, strings.HasPrefix(code, "VJ-"))
	for _, r := range code[3:] + NewAccessCode() {
		assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected %q", r)
	}
}
