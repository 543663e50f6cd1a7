package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caravan/internal/domain"
)

func TestReservationDeleteClearsCaptainsInTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tour_groups SET captain_passenger_id=NULL`).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM reservations WHERE id=\?`).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, ReservationService{DB: db}.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationDeleteMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tour_groups SET captain_passenger_id=NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM reservations WHERE id=\?`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := ReservationService{DB: db}.Delete(context.Background(), 42)
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
