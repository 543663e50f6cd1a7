package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

const passengerColumns = `p.id, p.reservation_id, p.name, p.age, p.is_free_under6,
	COALESCE(p.seat_number,''), COALESCE(p.congregation,'')`

type PassengerRepository struct {
	DB intdb.Querier
}

func scanPassenger(s rowScanner) (models.Passenger, error) {
	var (
		p   models.Passenger
		age sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.ReservationID, &p.Name, &age, &p.IsFreeUnder6, &p.SeatNumber, &p.Congregation); err != nil {
		return p, err
	}
	p.Age = nullIntPtr(age)
	return p, nil
}

func (r PassengerRepository) list(ctx context.Context, query string, args ...any) ([]models.Passenger, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Passenger{}
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByReservation returns the passengers of one reservation in insertion order.
func (r PassengerRepository) ListByReservation(ctx context.Context, reservationID int64) ([]models.Passenger, error) {
	return r.list(ctx, `SELECT `+passengerColumns+` FROM reservation_passengers p WHERE p.reservation_id=? ORDER BY p.id ASC`, reservationID)
}

// ListAll returns every passenger.
func (r PassengerRepository) ListAll(ctx context.Context) ([]models.Passenger, error) {
	return r.list(ctx, `SELECT `+passengerColumns+` FROM reservation_passengers p ORDER BY p.reservation_id ASC, p.id ASC`)
}

// ListUnassigned returns passengers of non-cancelled reservations that belong to no tour group.
func (r PassengerRepository) ListUnassigned(ctx context.Context) ([]models.Passenger, error) {
	return r.list(ctx, `
		SELECT `+passengerColumns+`
		FROM reservation_passengers p
		JOIN reservations r ON r.id = p.reservation_id
		LEFT JOIN tour_group_members m ON m.passenger_id = p.id
		WHERE m.id IS NULL AND r.status <> 'cancelado'
		ORDER BY p.reservation_id ASC, p.id ASC`)
}

// GetByID fetches one passenger.
func (r PassengerRepository) GetByID(ctx context.Context, id int64) (models.Passenger, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.Passenger{}, err
	}
	p, err := scanPassenger(q.QueryRowContext(ctx, `SELECT `+passengerColumns+` FROM reservation_passengers p WHERE p.id=? LIMIT 1`, id))
	if err != nil {
		return models.Passenger{}, notFound("pasajero", err)
	}
	return p, nil
}

// Create inserts a passenger row and returns its id.
func (r PassengerRepository) Create(ctx context.Context, p models.Passenger) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO reservation_passengers (reservation_id, name, age, is_free_under6, seat_number, congregation)
		VALUES (?,?,?,?,?,?)`,
		p.ReservationID, p.Name, intdb.NullInt(p.Age), p.IsFreeUnder6,
		intdb.NullIfEmpty(p.SeatNumber), intdb.NullIfEmpty(p.Congregation),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites the editable passenger columns.
func (r PassengerRepository) Update(ctx context.Context, p models.Passenger) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE reservation_passengers
		SET name=?, age=?, is_free_under6=?, seat_number=?, congregation=?
		WHERE id=?`,
		p.Name, intdb.NullInt(p.Age), p.IsFreeUnder6,
		intdb.NullIfEmpty(p.SeatNumber), intdb.NullIfEmpty(p.Congregation), p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for unchanged rows too; confirm existence.
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetFreeFlag writes a corrected free-under-6 flag.
func (r PassengerRepository) SetFreeFlag(ctx context.Context, id int64, free bool) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE reservation_passengers SET is_free_under6=? WHERE id=?`, free, id)
	return err
}

// Delete removes a passenger along with its tour group membership and
// captaincy. Run it inside a transaction.
func (r PassengerRepository) Delete(ctx context.Context, id int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `UPDATE tour_groups SET captain_passenger_id=NULL WHERE captain_passenger_id=?`, id); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM tour_group_members WHERE passenger_id=?`, id); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM reservation_passengers WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("pasajero", sql.ErrNoRows)
	}
	return nil
}

// DeleteByReservation removes all passengers (and their memberships) of a reservation.
func (r PassengerRepository) DeleteByReservation(ctx context.Context, reservationID int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	if err := clearCaptainsOf(ctx, q, reservationID); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM tour_group_members WHERE reservation_id=?`, reservationID); err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `DELETE FROM reservation_passengers WHERE reservation_id=?`, reservationID)
	return err
}

// SeatHolder returns who holds a seat in a non-cancelled reservation. The row
// is locked so concurrent bookings of the same seat serialize.
func (r PassengerRepository) SeatHolder(ctx context.Context, seat string, excludePassengerID int64) (models.OccupiedSeat, bool, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.OccupiedSeat{}, false, err
	}
	var s models.OccupiedSeat
	err = q.QueryRowContext(ctx, `
		SELECT p.seat_number, p.id, p.name, r.id, r.code
		FROM reservation_passengers p
		JOIN reservations r ON r.id = p.reservation_id
		WHERE p.seat_number=? AND p.id<>? AND r.status <> 'cancelado'
		LIMIT 1 FOR UPDATE`,
		strings.TrimSpace(seat), excludePassengerID,
	).Scan(&s.SeatNumber, &s.PassengerID, &s.PassengerName, &s.ReservationID, &s.ReservationCode)
	if err == sql.ErrNoRows {
		return models.OccupiedSeat{}, false, nil
	}
	if err != nil {
		return models.OccupiedSeat{}, false, err
	}
	return s, true, nil
}

// OccupiedSeats lists every seat held by a non-cancelled reservation.
func (r PassengerRepository) OccupiedSeats(ctx context.Context) ([]models.OccupiedSeat, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT p.seat_number, p.id, p.name, r.id, r.code
		FROM reservation_passengers p
		JOIN reservations r ON r.id = p.reservation_id
		WHERE p.seat_number IS NOT NULL AND p.seat_number <> '' AND r.status <> 'cancelado'
		ORDER BY p.seat_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OccupiedSeat{}
	for rows.Next() {
		var s models.OccupiedSeat
		if err := rows.Scan(&s.SeatNumber, &s.PassengerID, &s.PassengerName, &s.ReservationID, &s.ReservationCode); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSeated returns how many passengers of non-cancelled reservations exist.
func (r PassengerRepository) CountSeated(ctx context.Context) (int, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	var n int
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservation_passengers p
		JOIN reservations r ON r.id = p.reservation_id
		WHERE r.status <> 'cancelado'`).Scan(&n)
	return n, err
}

// clearCaptainsOf drops the captaincy of every passenger of a reservation.
func clearCaptainsOf(ctx context.Context, q intdb.Querier, reservationID int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE tour_groups SET captain_passenger_id=NULL
		WHERE captain_passenger_id IN (SELECT id FROM reservation_passengers WHERE reservation_id=?)`, reservationID)
	return err
}
