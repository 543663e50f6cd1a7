package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/events"
	"caravan/internal/observability"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

// PaymentService registers payments for reservations and attraction packages.
// Both paths derive the status with domain.DeriveStatus.
type PaymentService struct {
	DB        *sql.DB
	Pricing   intconfig.Pricing
	Events    events.Publisher
	RequestID string
}

func (s PaymentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s PaymentService) unitPrice() int64 {
	if s.Pricing.UnitPrice > 0 {
		return s.Pricing.UnitPrice
	}
	return domain.UnitPrice
}

func validatePayment(in models.PaymentInput) (models.PaymentInput, error) {
	in.Method = strings.ToLower(strings.TrimSpace(in.Method))
	in.Reference = strings.TrimSpace(in.Reference)
	if in.Amount <= 0 {
		return in, domain.ValidationError{Field: "amount", Msg: "el monto debe ser mayor a cero"}
	}
	if in.Method == "" {
		in.Method = domain.MethodCash
	}
	if !domain.ValidPaymentMethod(in.Method) {
		return in, domain.ValidationError{Field: "method", Msg: "método de pago inválido"}
	}
	return in, nil
}

// RegisterReservationPayment appends a payment and recomputes amount_paid as
// the sum of all payments of the reservation.
func (s PaymentService) RegisterReservationPayment(ctx context.Context, reservationID int64, in models.PaymentInput) (models.PaymentReceipt, error) {
	in, err := validatePayment(in)
	if err != nil {
		return models.PaymentReceipt{}, err
	}

	var (
		receipt models.PaymentReceipt
		code    string
	)
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		resRepo := repositories.ReservationRepository{DB: tx}
		payRepo := repositories.PaymentRepository{DB: tx}

		res, err := resRepo.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(res.Status) == domain.StatusCancelled {
			return domain.ConflictError{Resource: "reservación", Msg: "no se pueden registrar pagos en una reservación cancelada"}
		}
		paymentID, err := payRepo.Insert(ctx, res.ID, in)
		if err != nil {
			return err
		}
		paid, err := payRepo.SumByReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		status := domain.DeriveStatus(domain.ReservationStatus(res.Status), paid, res.TotalAmount, res.DepositRequired)
		if err := resRepo.UpdatePayment(ctx, res.ID, paid, string(status)); err != nil {
			return err
		}
		_, fixed, err := reconcileTx(ctx, tx, res.ID, s.unitPrice())
		if err != nil {
			return err
		}
		code = fixed.Code
		receipt = models.PaymentReceipt{
			PaymentID:   paymentID,
			ParentID:    fixed.ID,
			AmountPaid:  fixed.AmountPaid,
			TotalAmount: fixed.TotalAmount,
			Status:      fixed.Status,
		}
		return nil
	})
	if err != nil {
		return models.PaymentReceipt{}, err
	}

	observability.RecordPayment("reservation", in.Method, in.Amount)
	utils.LogEvent(s.RequestID, "payment", "register", fmt.Sprintf("code=%s amount=%d status=%s", code, in.Amount, receipt.Status))
	events.Emit(ctx, s.Events, s.RequestID, events.TopicPaymentRegistered, code, receipt)
	return receipt, nil
}

// RegisterPackagePayment is the package counterpart of RegisterReservationPayment.
// The deposit of a package follows the same ratio as reservations.
func (s PaymentService) RegisterPackagePayment(ctx context.Context, packageID int64, in models.PaymentInput) (models.PaymentReceipt, error) {
	in, err := validatePayment(in)
	if err != nil {
		return models.PaymentReceipt{}, err
	}

	var receipt models.PaymentReceipt
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.PackageRepository{DB: tx}

		pkg, err := repo.GetByIDForUpdate(ctx, packageID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(pkg.Status) == domain.StatusCancelled {
			return domain.ConflictError{Resource: "paquete", Msg: "no se pueden registrar pagos en un paquete cancelado"}
		}
		paymentID, err := repo.InsertPayment(ctx, pkg.ID, in)
		if err != nil {
			return err
		}
		paid, err := repo.SumPayments(ctx, pkg.ID)
		if err != nil {
			return err
		}
		status := domain.DeriveStatus(domain.ReservationStatus(pkg.Status), paid, pkg.TotalAmount, domain.DepositFor(pkg.TotalAmount))
		if err := repo.UpdatePayment(ctx, pkg.ID, paid, string(status)); err != nil {
			return err
		}
		receipt = models.PaymentReceipt{
			PaymentID:   paymentID,
			ParentID:    pkg.ID,
			AmountPaid:  paid,
			TotalAmount: pkg.TotalAmount,
			Status:      string(status),
		}
		return nil
	})
	if err != nil {
		return models.PaymentReceipt{}, err
	}

	observability.RecordPayment("package", in.Method, in.Amount)
	utils.LogEvent(s.RequestID, "payment", "register_package", fmt.Sprintf("package_id=%d amount=%d status=%s", packageID, in.Amount, receipt.Status))
	events.Emit(ctx, s.Events, s.RequestID, events.TopicPackagePayment, fmt.Sprintf("PKG-%d", packageID), receipt)
	return receipt, nil
}

// ListReservationPayments returns the payments of a reservation.
func (s PaymentService) ListReservationPayments(ctx context.Context, reservationID int64) ([]models.Payment, error) {
	if _, err := (repositories.ReservationRepository{DB: s.db()}).GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return repositories.PaymentRepository{DB: s.db()}.ListByReservation(ctx, reservationID)
}
