package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

type TourGroupRepository struct {
	DB intdb.Querier
}

const tourGroupSelect = `
	SELECT g.id, g.name, g.scheduled_at, g.max_members, COALESCE(g.bethel_code,''),
	       g.captain_passenger_id, (SELECT COUNT(*) FROM tour_group_members m WHERE m.group_id = g.id)
	FROM tour_groups g`

func scanTourGroup(s rowScanner) (models.TourGroup, error) {
	var (
		g       models.TourGroup
		at      sql.NullTime
		captain sql.NullInt64
	)
	if err := s.Scan(&g.ID, &g.Name, &at, &g.MaxMembers, &g.BethelCode, &captain, &g.MemberCount); err != nil {
		return g, err
	}
	if at.Valid {
		t := at.Time
		g.ScheduledAt = &t
	}
	g.CaptainID = nullInt64Ptr(captain)
	return g, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// List returns all groups ordered by schedule then name.
func (r TourGroupRepository) List(ctx context.Context) ([]models.TourGroup, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, tourGroupSelect+` ORDER BY g.scheduled_at IS NULL, g.scheduled_at ASC, g.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TourGroup{}
	for rows.Next() {
		g, err := scanTourGroup(rows)
		if err != nil {
			return out, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetByID fetches one group with its member count.
func (r TourGroupRepository) GetByID(ctx context.Context, id int64) (models.TourGroup, error) {
	return r.getOne(ctx, tourGroupSelect+` WHERE g.id=? LIMIT 1`, id)
}

// GetByIDForUpdate locks the group row so member additions serialize.
func (r TourGroupRepository) GetByIDForUpdate(ctx context.Context, id int64) (models.TourGroup, error) {
	return r.getOne(ctx, tourGroupSelect+` WHERE g.id=? LIMIT 1 FOR UPDATE`, id)
}

func (r TourGroupRepository) getOne(ctx context.Context, query string, id int64) (models.TourGroup, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.TourGroup{}, err
	}
	g, err := scanTourGroup(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.TourGroup{}, notFound("grupo", err)
	}
	return g, nil
}

// Create inserts a group.
func (r TourGroupRepository) Create(ctx context.Context, g models.TourGroup) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO tour_groups (name, scheduled_at, max_members, bethel_code)
		VALUES (?,?,?,?)`,
		strings.TrimSpace(g.Name), nullTime(g.ScheduledAt), g.MaxMembers, intdb.NullIfEmpty(strings.TrimSpace(g.BethelCode)),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites the editable group columns.
func (r TourGroupRepository) Update(ctx context.Context, g models.TourGroup) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE tour_groups SET name=?, scheduled_at=?, max_members=?, bethel_code=?
		WHERE id=?`,
		strings.TrimSpace(g.Name), nullTime(g.ScheduledAt), g.MaxMembers, intdb.NullIfEmpty(strings.TrimSpace(g.BethelCode)), g.ID,
	)
	return err
}

// SetCaptain stores the captain passenger id; nil clears it.
func (r TourGroupRepository) SetCaptain(ctx context.Context, groupID int64, passengerID *int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE tour_groups SET captain_passenger_id=? WHERE id=?`, intdb.NullInt64(passengerID), groupID)
	return err
}

// Delete removes a group; memberships cascade.
func (r TourGroupRepository) Delete(ctx context.Context, id int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM tour_groups WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("grupo", sql.ErrNoRows)
	}
	return nil
}

// Members lists a group's members with passenger and reservation details.
func (r TourGroupRepository) Members(ctx context.Context, groupID int64) ([]models.TourGroupMember, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT m.id, m.group_id, m.passenger_id, m.reservation_id, p.name, r.code
		FROM tour_group_members m
		JOIN reservation_passengers p ON p.id = m.passenger_id
		JOIN reservations r ON r.id = m.reservation_id
		WHERE m.group_id=?
		ORDER BY p.name ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TourGroupMember{}
	for rows.Next() {
		var m models.TourGroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.PassengerID, &m.ReservationID, &m.PassengerName, &m.ReservationCode); err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GroupOfPassenger returns the group id a passenger belongs to, if any.
func (r TourGroupRepository) GroupOfPassenger(ctx context.Context, passengerID int64) (int64, bool, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, false, err
	}
	var id int64
	err = q.QueryRowContext(ctx, `SELECT group_id FROM tour_group_members WHERE passenger_id=? LIMIT 1`, passengerID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// AddMember inserts a membership row.
func (r TourGroupRepository) AddMember(ctx context.Context, groupID, passengerID, reservationID int64) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO tour_group_members (group_id, passenger_id, reservation_id) VALUES (?,?,?)`,
		groupID, passengerID, reservationID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RemoveMember deletes a membership and clears the captain when it was that
// passenger. Run it inside a transaction.
func (r TourGroupRepository) RemoveMember(ctx context.Context, groupID, passengerID int64) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM tour_group_members WHERE group_id=? AND passenger_id=?`, groupID, passengerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("integrante", sql.ErrNoRows)
	}
	_, err = q.ExecContext(ctx, `UPDATE tour_groups SET captain_passenger_id=NULL WHERE id=? AND captain_passenger_id=?`, groupID, passengerID)
	return err
}
