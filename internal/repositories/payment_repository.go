package repositories

import (
	"context"
	"strings"
	"time"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

type PaymentRepository struct {
	DB intdb.Querier
}

// Insert appends a payment row; payments are never updated in place.
func (r PaymentRepository) Insert(ctx context.Context, reservationID int64, in models.PaymentInput) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO payments (reservation_id, amount, method, reference)
		VALUES (?,?,?,?)`,
		reservationID, in.Amount, strings.TrimSpace(in.Method), intdb.NullIfEmpty(strings.TrimSpace(in.Reference)),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SumByReservation returns the amount collected for a reservation.
func (r PaymentRepository) SumByReservation(ctx context.Context, reservationID int64) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	var sum int64
	err = q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount),0) FROM payments WHERE reservation_id=?`, reservationID).Scan(&sum)
	return sum, err
}

// ListByReservation returns the payments of a reservation, oldest first.
func (r PaymentRepository) ListByReservation(ctx context.Context, reservationID int64) ([]models.Payment, error) {
	return r.list(ctx, `
		SELECT id, reservation_id, amount, method, COALESCE(reference,''), created_at
		FROM payments WHERE reservation_id=? ORDER BY created_at ASC, id ASC`, reservationID)
}

// ListBetween returns payments created in [from, to).
func (r PaymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	return r.list(ctx, `
		SELECT id, reservation_id, amount, method, COALESCE(reference,''), created_at
		FROM payments WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC, id ASC`, from, to)
}

func (r PaymentRepository) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
