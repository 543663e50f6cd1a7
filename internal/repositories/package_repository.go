package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

const packageColumns = `id, reservation_code, reservation_id, package_name, contact_name, contact_phone,
	people_count, total_amount, amount_paid, status, created_at`

// PackageRepository stores attraction package reservations, their payments and ticket orders.
type PackageRepository struct {
	DB intdb.Querier
}

func scanPackage(s rowScanner) (models.PackageReservation, error) {
	var (
		p     models.PackageReservation
		resID sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.ReservationCode, &resID, &p.PackageName, &p.ContactName, &p.ContactPhone,
		&p.PeopleCount, &p.TotalAmount, &p.AmountPaid, &p.Status, &p.CreatedAt)
	p.ReservationID = nullInt64Ptr(resID)
	return p, err
}

// List returns package reservations, optionally filtered by reservation code.
func (r PackageRepository) List(ctx context.Context, code string) ([]models.PackageReservation, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + packageColumns + ` FROM package_reservations`
	args := []any{}
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		query += ` WHERE reservation_code=?`
		args = append(args, code)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PackageReservation{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one package reservation.
func (r PackageRepository) GetByID(ctx context.Context, id int64) (models.PackageReservation, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM package_reservations WHERE id=? LIMIT 1`, id)
}

// GetByIDForUpdate fetches and locks one package reservation.
func (r PackageRepository) GetByIDForUpdate(ctx context.Context, id int64) (models.PackageReservation, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM package_reservations WHERE id=? LIMIT 1 FOR UPDATE`, id)
}

func (r PackageRepository) getOne(ctx context.Context, query string, id int64) (models.PackageReservation, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.PackageReservation{}, err
	}
	p, err := scanPackage(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.PackageReservation{}, notFound("paquete", err)
	}
	return p, nil
}

// Create inserts a package reservation.
func (r PackageRepository) Create(ctx context.Context, p models.PackageReservation) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO package_reservations
			(reservation_code, reservation_id, package_name, contact_name, contact_phone,
			 people_count, total_amount, amount_paid, status)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ReservationCode, intdb.NullInt64(p.ReservationID), p.PackageName, p.ContactName, p.ContactPhone,
		p.PeopleCount, p.TotalAmount, p.AmountPaid, p.Status,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites the editable columns; amount_paid is owned by payments.
func (r PackageRepository) Update(ctx context.Context, p models.PackageReservation) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE package_reservations
		SET reservation_code=?, reservation_id=?, package_name=?, contact_name=?, contact_phone=?,
		    people_count=?, total_amount=?, status=?
		WHERE id=?`,
		p.ReservationCode, intdb.NullInt64(p.ReservationID), p.PackageName, p.ContactName, p.ContactPhone,
		p.PeopleCount, p.TotalAmount, p.Status, p.ID,
	)
	return err
}

// UpdatePayment stores the collected amount and derived status.
func (r PackageRepository) UpdatePayment(ctx context.Context, id, amountPaid int64, status string) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE package_reservations SET amount_paid=?, status=? WHERE id=?`, amountPaid, status, id)
	return err
}

// Delete removes a package reservation; its payments cascade.
func (r PackageRepository) Delete(ctx context.Context, id int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM package_reservations WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("paquete", sql.ErrNoRows)
	}
	return nil
}

// InsertPayment appends a package payment row.
func (r PackageRepository) InsertPayment(ctx context.Context, packageID int64, in models.PaymentInput) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO package_payments (package_reservation_id, amount, method, note) VALUES (?,?,?,?)`,
		packageID, in.Amount, strings.TrimSpace(in.Method), intdb.NullIfEmpty(strings.TrimSpace(in.Reference)),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SumPayments returns the amount collected for a package reservation.
func (r PackageRepository) SumPayments(ctx context.Context, packageID int64) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	var sum int64
	err = q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount),0) FROM package_payments WHERE package_reservation_id=?`, packageID).Scan(&sum)
	return sum, err
}

const ticketColumns = `id, reservation_code, attraction, people_count, amount, payment_status, created_at`

func scanTicket(s rowScanner) (models.TicketOrder, error) {
	var t models.TicketOrder
	err := s.Scan(&t.ID, &t.ReservationCode, &t.Attraction, &t.PeopleCount, &t.Amount, &t.PaymentStatus, &t.CreatedAt)
	return t, err
}

// ListTickets returns ticket orders, optionally filtered by reservation code.
func (r PackageRepository) ListTickets(ctx context.Context, code string) ([]models.TicketOrder, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + ticketColumns + ` FROM ticket_orders`
	args := []any{}
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		query += ` WHERE reservation_code=?`
		args = append(args, code)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TicketOrder{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTicket fetches one ticket order.
func (r PackageRepository) GetTicket(ctx context.Context, id int64) (models.TicketOrder, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.TicketOrder{}, err
	}
	t, err := scanTicket(q.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM ticket_orders WHERE id=? LIMIT 1`, id))
	if err != nil {
		return models.TicketOrder{}, notFound("boleto", err)
	}
	return t, nil
}

// CreateTicket inserts a ticket order.
func (r PackageRepository) CreateTicket(ctx context.Context, t models.TicketOrder) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO ticket_orders (reservation_code, attraction, people_count, amount, payment_status)
		VALUES (?,?,?,?,?)`,
		t.ReservationCode, t.Attraction, t.PeopleCount, t.Amount, t.PaymentStatus,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateTicket overwrites a ticket order.
func (r PackageRepository) UpdateTicket(ctx context.Context, t models.TicketOrder) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE ticket_orders SET reservation_code=?, attraction=?, people_count=?, amount=?, payment_status=?
		WHERE id=?`,
		t.ReservationCode, t.Attraction, t.PeopleCount, t.Amount, t.PaymentStatus, t.ID,
	)
	return err
}

// DeleteTicket removes a ticket order.
func (r PackageRepository) DeleteTicket(ctx context.Context, id int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM ticket_orders WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("boleto", sql.ErrNoRows)
	}
	return nil
}
