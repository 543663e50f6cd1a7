package services

import (
	"context"
	"database/sql"
	"strconv"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

// ReservationService is the admin view over reservations. Reads never write.
type ReservationService struct {
	DB        *sql.DB
	RequestID string
}

func (s ReservationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReservationService) List(ctx context.Context, f repositories.ReservationFilter) ([]models.Reservation, error) {
	return repositories.ReservationRepository{DB: s.db()}.List(ctx, f)
}

func (s ReservationService) Get(ctx context.Context, id int64) (models.ReservationDetail, error) {
	res, err := repositories.ReservationRepository{DB: s.db()}.GetByID(ctx, id)
	if err != nil {
		return models.ReservationDetail{}, err
	}
	return LoadDetail(ctx, s.db(), res)
}

// Update edits contact data, payment method and the host flag.
func (s ReservationService) Update(ctx context.Context, id int64, upd repositories.ReservationUpdate) (models.Reservation, error) {
	if upd.ResponsibleName != nil && utils.NormalizeSpace(*upd.ResponsibleName) == "" {
		return models.Reservation{}, domain.ValidationError{Field: "responsible_name", Msg: "el nombre del responsable es obligatorio"}
	}
	if upd.ResponsiblePhone != nil {
		phone := utils.NormalizePhone(*upd.ResponsiblePhone)
		if !utils.ValidPhone(phone) {
			return models.Reservation{}, domain.ValidationError{Field: "responsible_phone", Msg: "el teléfono debe tener 10 dígitos"}
		}
		upd.ResponsiblePhone = &phone
	}
	if upd.PaymentMethod != nil && *upd.PaymentMethod != "" && !domain.ValidPaymentMethod(*upd.PaymentMethod) {
		return models.Reservation{}, domain.ValidationError{Field: "payment_method", Msg: "método de pago inválido"}
	}

	var res models.Reservation
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.ReservationRepository{DB: tx}
		if _, err := repo.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, upd); err != nil {
			return err
		}
		var err error
		res, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return models.Reservation{}, err
	}
	utils.LogEvent(s.RequestID, "reservation", "update", "id="+strconv.FormatInt(id, 10))
	return res, nil
}

// Delete removes a reservation with its passengers, payments and memberships.
func (s ReservationService) Delete(ctx context.Context, id int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		return repositories.ReservationRepository{DB: tx}.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "reservation", "delete", "id="+strconv.FormatInt(id, 10))
	return nil
}
