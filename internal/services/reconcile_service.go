package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/events"
	"caravan/internal/lock"
	"caravan/internal/observability"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

const (
	sweepLockName = "reconcile-all"
	sweepLockTTL  = 10 * time.Minute
)

// ReconcileService keeps reservation aggregates consistent with passenger rows.
type ReconcileService struct {
	DB        *sql.DB
	UnitPrice int64
	Locker    *lock.Locker
	Events    events.Publisher
	RequestID string
}

// SweepFailure records a reservation the sweep could not reconcile.
type SweepFailure struct {
	ReservationID int64  `json:"reservation_id"`
	Error         string `json:"error"`
}

// SweepReport summarizes a ReconcileAll run.
type SweepReport struct {
	Checked      int                    `json:"checked"`
	Corrected    int                    `json:"corrected"`
	LegacyPriced int                    `json:"legacy_priced"`
	Corrections  []domain.ReconcilePlan `json:"corrections"`
	Failures     []SweepFailure         `json:"failures"`
}

func (s ReconcileService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReconcileService) unitPrice() int64 {
	if s.UnitPrice > 0 {
		return s.UnitPrice
	}
	return domain.UnitPrice
}

// reconcileTx locks the reservation, recomputes it and writes the corrections
// through q. Callers that modify passengers or payments run it in their own
// transaction before committing.
func reconcileTx(ctx context.Context, q intdb.Querier, reservationID, unitPrice int64) (domain.ReconcilePlan, models.Reservation, error) {
	resRepo := repositories.ReservationRepository{DB: q}
	paxRepo := repositories.PassengerRepository{DB: q}

	res, err := resRepo.GetByIDForUpdate(ctx, reservationID)
	if err != nil {
		return domain.ReconcilePlan{}, models.Reservation{}, err
	}
	passengers, err := paxRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return domain.ReconcilePlan{}, res, err
	}

	plan := domain.Reconcile(res, passengers, unitPrice)
	for _, fix := range plan.PassengerFixes {
		if err := paxRepo.SetFreeFlag(ctx, fix.PassengerID, fix.IsFreeUnder6); err != nil {
			return plan, res, err
		}
	}
	if plan.UpdateReservation {
		if err := resRepo.UpdateAggregates(ctx, reservationID, plan.Aggregates); err != nil {
			return plan, res, err
		}
	}
	fixed, _ := plan.Apply(res, passengers)
	return plan, fixed, nil
}

// afterReconcile records metrics and the event for a committed non-empty plan.
func afterReconcile(ctx context.Context, pub events.Publisher, requestID, trigger string, plan domain.ReconcilePlan, res models.Reservation) {
	if plan.Empty() {
		return
	}
	observability.RecordReconcile(trigger, plan.LegacyPriced)
	utils.LogEvent(requestID, "reconcile", trigger, "reservation_id="+strconv.FormatInt(res.ID, 10)+" corrected")
	events.Emit(ctx, pub, requestID, events.TopicReservationReconciled, res.Code, plan)
}

// ReconcileReservation reconciles one reservation in its own transaction.
func (s ReconcileService) ReconcileReservation(ctx context.Context, reservationID int64) (domain.ReconcilePlan, error) {
	if reservationID <= 0 {
		return domain.ReconcilePlan{}, domain.ValidationError{Field: "id", Msg: "id inválido"}
	}
	var (
		plan domain.ReconcilePlan
		res  models.Reservation
	)
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		var err error
		plan, res, err = reconcileTx(ctx, tx, reservationID, s.unitPrice())
		return err
	})
	if err != nil {
		return domain.ReconcilePlan{}, err
	}
	afterReconcile(ctx, s.Events, s.RequestID, "manual", plan, res)
	return plan, nil
}

// ReconcileAll sweeps every reservation. Only one sweep runs at a time.
func (s ReconcileService) ReconcileAll(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Corrections: []domain.ReconcilePlan{}, Failures: []SweepFailure{}}

	err := s.Locker.With(ctx, sweepLockName, uuid.NewString(), sweepLockTTL, func() error {
		ids, err := repositories.ReservationRepository{DB: s.db()}.ListIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			report.Checked++

			var (
				plan domain.ReconcilePlan
				res  models.Reservation
			)
			err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
				var err error
				plan, res, err = reconcileTx(ctx, tx, id, s.unitPrice())
				return err
			})
			if err != nil {
				utils.LogError(s.RequestID, "reconcile", "sweep", err)
				report.Failures = append(report.Failures, SweepFailure{ReservationID: id, Error: err.Error()})
				continue
			}
			if plan.Empty() {
				continue
			}
			report.Corrected++
			if plan.LegacyPriced {
				report.LegacyPriced++
			}
			report.Corrections = append(report.Corrections, plan)
			afterReconcile(ctx, s.Events, s.RequestID, "sweep", plan, res)
		}
		return nil
	})
	if errors.Is(err, lock.ErrHeld) {
		return report, domain.ConflictError{Resource: "conciliación", Msg: err.Error(), Err: err}
	}
	if err != nil {
		return report, err
	}

	utils.LogEvent(s.RequestID, "reconcile", "sweep",
		"checked="+strconv.Itoa(report.Checked)+" corrected="+strconv.Itoa(report.Corrected)+" failures="+strconv.Itoa(len(report.Failures)))
	return report, nil
}
