package services

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

// PassengerService is the admin CRUD over passengers. Every write reconciles
// the owning reservation before commit.
type PassengerService struct {
	DB        *sql.DB
	Pricing   intconfig.Pricing
	RequestID string
}

// SeatMap lists occupied seats and the configured capacity. Seated counts
// every passenger of active reservations, with or without a seat number.
type SeatMap struct {
	Capacity int                   `json:"capacity"`
	Occupied []models.OccupiedSeat `json:"occupied"`
	Seated   int                   `json:"seated"`
	Free     int                   `json:"free"`
}

func (s PassengerService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s PassengerService) unitPrice() int64 {
	if s.Pricing.UnitPrice > 0 {
		return s.Pricing.UnitPrice
	}
	return domain.UnitPrice
}

// List returns passengers of one reservation, or all passengers when reservationID is 0.
func (s PassengerService) List(ctx context.Context, reservationID int64) ([]models.Passenger, error) {
	repo := repositories.PassengerRepository{DB: s.db()}
	if reservationID > 0 {
		return repo.ListByReservation(ctx, reservationID)
	}
	return repo.ListAll(ctx)
}

func (s PassengerService) Get(ctx context.Context, id int64) (models.Passenger, error) {
	return repositories.PassengerRepository{DB: s.db()}.GetByID(ctx, id)
}

// Create adds a passenger to a reservation.
func (s PassengerService) Create(ctx context.Context, reservationID int64, in models.PassengerInput) (models.Passenger, error) {
	normalized, err := normalizePassengers([]models.PassengerInput{in}, "")
	if err != nil {
		return models.Passenger{}, err
	}
	in = normalized[0]

	var out models.Passenger
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		resRepo := repositories.ReservationRepository{DB: tx}
		paxRepo := repositories.PassengerRepository{DB: tx}

		res, err := resRepo.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(res.Status) == domain.StatusCancelled {
			return domain.ConflictError{Resource: "reservación", Msg: "la reservación está cancelada"}
		}
		if in.Congregation == "" {
			in.Congregation = res.Congregation
		}
		if err := ensureSeatsFree(ctx, paxRepo, []models.PassengerInput{in}, 0); err != nil {
			return err
		}
		if err := ensureCapacity(ctx, paxRepo, s.Pricing.SeatCapacity, 1); err != nil {
			return err
		}
		rows, err := insertPassengers(ctx, paxRepo, res.ID, []models.PassengerInput{in})
		if err != nil {
			return err
		}
		out = rows[0]
		_, _, err = reconcileTx(ctx, tx, res.ID, s.unitPrice())
		return err
	})
	if err != nil {
		return models.Passenger{}, err
	}
	utils.LogEvent(s.RequestID, "passenger", "create", fmt.Sprintf("reservation_id=%d passenger_id=%d", reservationID, out.ID))
	return out, nil
}

// Update edits a passenger; the free flag always follows the age.
func (s PassengerService) Update(ctx context.Context, id int64, in models.PassengerInput) (models.Passenger, error) {
	normalized, err := normalizePassengers([]models.PassengerInput{in}, "")
	if err != nil {
		return models.Passenger{}, err
	}
	in = normalized[0]

	var out models.Passenger
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		resRepo := repositories.ReservationRepository{DB: tx}
		paxRepo := repositories.PassengerRepository{DB: tx}

		current, err := paxRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := resRepo.GetByIDForUpdate(ctx, current.ReservationID); err != nil {
			return err
		}
		if in.SeatNumber != "" {
			holder, taken, err := paxRepo.SeatHolder(ctx, in.SeatNumber, id)
			if err != nil {
				return err
			}
			if taken {
				return domain.ConflictError{Resource: "asiento", Msg: "el asiento " + in.SeatNumber + " ya está ocupado por " + holder.ReservationCode}
			}
		}
		out = models.Passenger{
			ID:            id,
			ReservationID: current.ReservationID,
			Name:          in.Name,
			Age:           in.Age,
			IsFreeUnder6:  domain.IsFreeUnder6(in.Age),
			SeatNumber:    in.SeatNumber,
			Congregation:  utils.FirstNonEmpty(in.Congregation, current.Congregation),
		}
		if err := paxRepo.Update(ctx, out); err != nil {
			return err
		}
		_, _, err = reconcileTx(ctx, tx, current.ReservationID, s.unitPrice())
		return err
	})
	if err != nil {
		return models.Passenger{}, err
	}
	utils.LogEvent(s.RequestID, "passenger", "update", fmt.Sprintf("passenger_id=%d", id))
	return out, nil
}

// Delete removes a passenger and its tour group membership.
func (s PassengerService) Delete(ctx context.Context, id int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		paxRepo := repositories.PassengerRepository{DB: tx}
		current, err := paxRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := (repositories.ReservationRepository{DB: tx}).GetByIDForUpdate(ctx, current.ReservationID); err != nil {
			return err
		}
		if err := paxRepo.Delete(ctx, id); err != nil {
			return err
		}
		_, _, err = reconcileTx(ctx, tx, current.ReservationID, s.unitPrice())
		return err
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "passenger", "delete", fmt.Sprintf("passenger_id=%d", id))
	return nil
}

// SeatMap returns the occupied seats of active reservations.
func (s PassengerService) SeatMap(ctx context.Context) (SeatMap, error) {
	repo := repositories.PassengerRepository{DB: s.db()}
	occupied, err := repo.OccupiedSeats(ctx)
	if err != nil {
		return SeatMap{}, err
	}
	seated, err := repo.CountSeated(ctx)
	if err != nil {
		return SeatMap{}, err
	}
	m := SeatMap{Capacity: s.Pricing.SeatCapacity, Occupied: occupied, Seated: seated}
	if m.Capacity > 0 {
		m.Free = max(m.Capacity-seated, 0)
	}
	return m, nil
}
