package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

const reservationColumns = `id, code, access_code, responsible_name, responsible_phone, congregation,
	seats_total, seats_payable, total_amount, deposit_required, amount_paid,
	status, payment_method, is_host, created_at`

type ReservationRepository struct {
	DB intdb.Querier
}

// ReservationFilter narrows List. Empty fields do not filter.
type ReservationFilter struct {
	Status      string
	Search      string
	ExcludeHost bool
}

// ReservationUpdate supports PATCH-style updates via pointer presence.
type ReservationUpdate struct {
	ResponsibleName  *string `json:"responsible_name"`
	ResponsiblePhone *string `json:"responsible_phone"`
	Congregation     *string `json:"congregation"`
	PaymentMethod    *string `json:"payment_method"`
	IsHost           *bool   `json:"is_host"`
}

func scanReservation(s rowScanner) (models.Reservation, error) {
	var r models.Reservation
	err := s.Scan(
		&r.ID,
		&r.Code,
		&r.AccessCode,
		&r.ResponsibleName,
		&r.ResponsiblePhone,
		&r.Congregation,
		&r.SeatsTotal,
		&r.SeatsPayable,
		&r.TotalAmount,
		&r.DepositRequired,
		&r.AmountPaid,
		&r.Status,
		&r.PaymentMethod,
		&r.IsHost,
		&r.CreatedAt,
	)
	return r, err
}

// Create inserts a reservation and returns its id.
func (r ReservationRepository) Create(ctx context.Context, res models.Reservation) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	out, err := q.ExecContext(ctx, `
		INSERT INTO reservations
			(code, access_code, responsible_name, responsible_phone, congregation,
			 seats_total, seats_payable, total_amount, deposit_required, amount_paid,
			 status, payment_method, is_host)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.Code, res.AccessCode, res.ResponsibleName, res.ResponsiblePhone, res.Congregation,
		res.SeatsTotal, res.SeatsPayable, res.TotalAmount, res.DepositRequired, res.AmountPaid,
		res.Status, res.PaymentMethod, res.IsHost,
	)
	if err != nil {
		return 0, err
	}
	return out.LastInsertId()
}

// GetByID fetches one reservation.
func (r ReservationRepository) GetByID(ctx context.Context, id int64) (models.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=? LIMIT 1`, id)
}

// GetByIDForUpdate fetches and row-locks one reservation; only meaningful inside a transaction.
func (r ReservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (models.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=? LIMIT 1 FOR UPDATE`, id)
}

// GetByCode fetches a reservation by its human-readable code.
func (r ReservationRepository) GetByCode(ctx context.Context, code string) (models.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE code=? LIMIT 1`, strings.ToUpper(strings.TrimSpace(code)))
}

func (r ReservationRepository) getOne(ctx context.Context, query string, args ...any) (models.Reservation, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.Reservation{}, err
	}
	res, err := scanReservation(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.Reservation{}, notFound("reservación", err)
	}
	return res, nil
}

// CodeExists reports whether a reservation code is already used.
func (r ReservationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	q, err := querier(r.DB)
	if err != nil {
		return false, err
	}
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE code=?`, code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns reservations ordered by creation, newest first.
func (r ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	where := []string{}
	args := []any{}
	if s := strings.TrimSpace(f.Status); s != "" {
		where = append(where, "status=?")
		args = append(args, s)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(code LIKE ? OR responsible_name LIKE ? OR responsible_phone LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}
	if f.ExcludeHost {
		where = append(where, "is_host=0")
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListIDs returns every reservation id in ascending order.
func (r ReservationRepository) ListIDs(ctx context.Context) ([]int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `SELECT id FROM reservations ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpdateAggregates writes recomputed seat and money aggregates. The status is
// only written when it is not cancelled.
func (r ReservationRepository) UpdateAggregates(ctx context.Context, id int64, agg models.ReservationAggregates) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE reservations
		SET seats_total=?, seats_payable=?, total_amount=?, deposit_required=?,
		    status=IF(status='cancelado', status, ?)
		WHERE id=?`,
		agg.SeatsTotal, agg.SeatsPayable, agg.TotalAmount, agg.DepositRequired, agg.Status, id,
	)
	return err
}

// UpdatePayment stores the paid amount and derived status.
func (r ReservationRepository) UpdatePayment(ctx context.Context, id, amountPaid int64, status string) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE reservations SET amount_paid=?, status=? WHERE id=?`, amountPaid, status, id)
	return err
}

// SetStatus overwrites the status (used for cancellation).
func (r ReservationRepository) SetStatus(ctx context.Context, id int64, status string) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE reservations SET status=? WHERE id=?`, status, id)
	return err
}

// Update applies the present fields of upd.
func (r ReservationRepository) Update(ctx context.Context, id int64, upd ReservationUpdate) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	sets := []string{}
	args := []any{}
	if upd.ResponsibleName != nil {
		sets = append(sets, "responsible_name=?")
		args = append(args, strings.TrimSpace(*upd.ResponsibleName))
	}
	if upd.ResponsiblePhone != nil {
		sets = append(sets, "responsible_phone=?")
		args = append(args, strings.TrimSpace(*upd.ResponsiblePhone))
	}
	if upd.Congregation != nil {
		sets = append(sets, "congregation=?")
		args = append(args, strings.TrimSpace(*upd.Congregation))
	}
	if upd.PaymentMethod != nil {
		sets = append(sets, "payment_method=?")
		args = append(args, strings.TrimSpace(*upd.PaymentMethod))
	}
	if upd.IsHost != nil {
		sets = append(sets, "is_host=?")
		args = append(args, *upd.IsHost)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err = q.ExecContext(ctx, `UPDATE reservations SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	return err
}

// Delete removes a reservation; passengers and payments cascade. Captaincies
// held by its passengers are cleared first.
func (r ReservationRepository) Delete(ctx context.Context, id int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	if err := clearCaptainsOf(ctx, q, id); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM reservations WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("reservación", sql.ErrNoRows)
	}
	return nil
}
