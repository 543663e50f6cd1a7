package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caravan/internal/domain"
)

func TestPackageCreateResolvesReservationCode(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").
		WillReturnRows(reservationRows(sampleReservation()))
	mock.ExpectExec(`INSERT INTO package_reservations`).
		WithArgs("VJ-ABC234", int64(1), "Museo", "Ana", "5512345678", 2, int64(900), int64(0), "pendiente").
		WillReturnResult(sqlmock.NewResult(3, 1))

	p, err := PackageService{DB: db}.Create(context.Background(), PackageInput{
		ReservationCode: " vj-abc234 ",
		PackageName:     "Museo",
		ContactName:     "Ana",
		ContactPhone:    "55-1234-5678",
		PeopleCount:     2,
		TotalAmount:     900,
		Status:          "pagado_completo",
	})
	require.NoError(t, err)
	require.NotNil(t, p.ReservationID)
	assert.Equal(t, int64(1), *p.ReservationID)
	assert.Equal(t, "pendiente", p.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageCreateKeepsUnknownCodeUnlinked(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO package_reservations`).WillReturnResult(sqlmock.NewResult(4, 1))

	p, err := PackageService{DB: db}.Create(context.Background(), PackageInput{
		ReservationCode: "LIBRE-1", PackageName: "Zoo", ContactName: "Luis", PeopleCount: 1,
	})
	require.NoError(t, err)
	assert.Nil(t, p.ReservationID)
}

func TestPackageInputValidation(t *testing.T) {
	cases := []PackageInput{
		{ContactName: "A", PeopleCount: 1},
		{PackageName: "P", PeopleCount: 1},
		{PackageName: "P", ContactName: "A", PeopleCount: 0},
		{PackageName: "P", ContactName: "A", PeopleCount: 1, Status: "raro"},
		{PackageName: "P", ContactName: "A", PeopleCount: 1, ContactPhone: "123"},
	}
	for _, in := range cases {
		_, err := in.toModel()
		assert.True(t, domain.IsValidation(err), "%+v", in)
	}
}

func TestTicketOrderInputDefaultsStatus(t *testing.T) {
	o, err := TicketOrderInput{ReservationCode: "vj-1", Attraction: "Acuario", PeopleCount: 2, Amount: 300}.toModel()
	require.NoError(t, err)
	assert.Equal(t, "VJ-1", o.ReservationCode)
	assert.Equal(t, "pendiente", o.PaymentStatus)
}

func TestPackageUpdateKeepsCancelledWithoutStatus(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM package_reservations WHERE id=\? LIMIT 1 FOR UPDATE`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(packageCols).
			AddRow(5, "", nil, "Museo", "Ana", "", 2, 900, 900, "cancelado", fixedTime))
	mock.ExpectExec(`UPDATE package_reservations`).
		WithArgs("", sqlmock.AnyArg(), "Museo", "Ana María", "", 3, int64(900), "cancelado", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := PackageService{DB: db}.Update(context.Background(), 5, PackageInput{
		PackageName: "Museo", ContactName: "Ana María", PeopleCount: 3, TotalAmount: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelado", p.Status)
	assert.Equal(t, int64(900), p.AmountPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageUpdateReinstatesFromPayments(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM package_reservations WHERE id=\? LIMIT 1 FOR UPDATE`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(packageCols).
			AddRow(5, "VJ-ABC234", 1, "Museo", "Ana", "", 2, 900, 450, "cancelado", fixedTime))
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").
		WillReturnRows(reservationRows(sampleReservation()))
	mock.ExpectExec(`UPDATE package_reservations`).
		WithArgs("VJ-ABC234", sqlmock.AnyArg(), "Museo", "Ana", "", 2, int64(900), "anticipo_pagado", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := PackageService{DB: db}.Update(context.Background(), 5, PackageInput{
		ReservationCode: "vj-abc234", PackageName: "Museo", ContactName: "Ana",
		PeopleCount: 2, TotalAmount: 900, Status: "pendiente",
	})
	require.NoError(t, err)
	assert.Equal(t, "anticipo_pagado", p.Status)
	require.NotNil(t, p.ReservationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM package_reservations WHERE id=\? LIMIT 1 FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := PackageService{DB: db}.Update(context.Background(), 9, PackageInput{PackageName: "Zoo", ContactName: "Luis", PeopleCount: 1})
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
