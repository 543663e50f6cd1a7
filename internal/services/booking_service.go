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
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

const maxCodeAttempts = 5

// BookingService runs the public booking flow and reservation self-service.
type BookingService struct {
	DB        *sql.DB
	Pricing   intconfig.Pricing
	Events    events.Publisher
	RequestID string
	PublicURL string
	NewCode   func() string
	NewAccess func() string
}

// CreateReservationRequest is the payload of the booking flow's final step.
type CreateReservationRequest struct {
	ResponsibleName  string                  `json:"responsible_name"`
	ResponsiblePhone string                  `json:"responsible_phone"`
	Congregation     string                  `json:"congregation"`
	PaymentMethod    string                  `json:"payment_method"`
	IsHost           bool                    `json:"is_host"`
	Passengers       []models.PassengerInput `json:"passengers"`
}

// Confirmation is returned once a reservation is stored.
type Confirmation struct {
	Reservation models.ReservationDetail `json:"reservation"`
	WhatsAppURL string                   `json:"whatsapp_url"`
	TicketURL   string                   `json:"ticket_url"`
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) unitPrice() int64 {
	if s.Pricing.UnitPrice > 0 {
		return s.Pricing.UnitPrice
	}
	return domain.UnitPrice
}

func (s BookingService) code() string {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return NewReservationCode()
}

func (s BookingService) access() string {
	if s.NewAccess != nil {
		return s.NewAccess()
	}
	return NewAccessCode()
}

// Steps returns the booking flow for a party.
func (s BookingService) Steps(adults, children int) ([]domain.BookingStep, error) {
	if adults < 1 {
		return nil, domain.ValidationError{Field: "adults", Msg: "se requiere al menos un adulto"}
	}
	if children < 0 {
		return nil, domain.ValidationError{Field: "children", Msg: "valor inválido"}
	}
	return domain.BookingSteps(adults, children), nil
}

// normalizePassengers trims input and rejects invalid ages and seats repeated within the party.
func normalizePassengers(in []models.PassengerInput, fallbackCongregation string) ([]models.PassengerInput, error) {
	out := make([]models.PassengerInput, 0, len(in))
	seen := map[string]bool{}
	for i, p := range in {
		p.Name = utils.NormalizeSpace(p.Name)
		if p.Name == "" {
			return nil, domain.ValidationError{Field: fmt.Sprintf("passengers[%d].name", i), Msg: "el nombre es obligatorio"}
		}
		if p.Age != nil && (*p.Age < 0 || *p.Age > 120) {
			return nil, domain.ValidationError{Field: fmt.Sprintf("passengers[%d].age", i), Msg: "edad inválida"}
		}
		p.SeatNumber = utils.NormalizeSeat(p.SeatNumber)
		if p.SeatNumber != "" {
			if seen[p.SeatNumber] {
				return nil, domain.ValidationError{Field: fmt.Sprintf("passengers[%d].seat_number", i), Msg: "asiento repetido: " + p.SeatNumber}
			}
			seen[p.SeatNumber] = true
		}
		p.Congregation = utils.FirstNonEmpty(utils.NormalizeSpace(p.Congregation), fallbackCongregation)
		out = append(out, p)
	}
	return out, nil
}

func (req CreateReservationRequest) validate() (CreateReservationRequest, error) {
	req.ResponsibleName = utils.NormalizeSpace(req.ResponsibleName)
	req.ResponsiblePhone = utils.NormalizePhone(req.ResponsiblePhone)
	req.Congregation = utils.NormalizeSpace(req.Congregation)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))

	if req.ResponsibleName == "" {
		return req, domain.ValidationError{Field: "responsible_name", Msg: "el nombre del responsable es obligatorio"}
	}
	if !utils.ValidPhone(req.ResponsiblePhone) {
		return req, domain.ValidationError{Field: "responsible_phone", Msg: "el teléfono debe tener 10 dígitos"}
	}
	if req.Congregation == "" {
		return req, domain.ValidationError{Field: "congregation", Msg: "la congregación es obligatoria"}
	}
	if req.PaymentMethod != "" && !domain.ValidPaymentMethod(req.PaymentMethod) {
		return req, domain.ValidationError{Field: "payment_method", Msg: "método de pago inválido"}
	}
	if len(req.Passengers) == 0 {
		return req, domain.ValidationError{Field: "passengers", Msg: "se requiere al menos un pasajero"}
	}
	passengers, err := normalizePassengers(req.Passengers, req.Congregation)
	if err != nil {
		return req, err
	}
	req.Passengers = passengers
	return req, nil
}

// ensureSeatsFree fails with a ConflictError when a requested seat belongs to another active reservation.
func ensureSeatsFree(ctx context.Context, repo repositories.PassengerRepository, passengers []models.PassengerInput, excludeReservationID int64) error {
	for _, p := range passengers {
		if p.SeatNumber == "" {
			continue
		}
		holder, taken, err := repo.SeatHolder(ctx, p.SeatNumber, 0)
		if err != nil {
			return err
		}
		if taken && holder.ReservationID != excludeReservationID {
			return domain.ConflictError{Resource: "asiento", Msg: "el asiento " + p.SeatNumber + " ya está ocupado"}
		}
	}
	return nil
}

// ensureCapacity checks the bus still has room for extra passengers.
func ensureCapacity(ctx context.Context, repo repositories.PassengerRepository, capacity, extra int) error {
	if capacity <= 0 || extra <= 0 {
		return nil
	}
	seated, err := repo.CountSeated(ctx)
	if err != nil {
		return err
	}
	if seated+extra > capacity {
		return domain.ConflictError{Resource: "cupo", Msg: fmt.Sprintf("solo quedan %d lugares", max(capacity-seated, 0))}
	}
	return nil
}

func insertPassengers(ctx context.Context, repo repositories.PassengerRepository, reservationID int64, in []models.PassengerInput) ([]models.Passenger, error) {
	out := make([]models.Passenger, 0, len(in))
	for _, p := range in {
		row := models.Passenger{
			ReservationID: reservationID,
			Name:          p.Name,
			Age:           p.Age,
			IsFreeUnder6:  domain.IsFreeUnder6(p.Age),
			SeatNumber:    p.SeatNumber,
			Congregation:  p.Congregation,
		}
		id, err := repo.Create(ctx, row)
		if err != nil {
			return nil, err
		}
		row.ID = id
		out = append(out, row)
	}
	return out, nil
}

// CreateReservation stores a reservation with its passengers in one transaction.
func (s BookingService) CreateReservation(ctx context.Context, req CreateReservationRequest) (Confirmation, error) {
	req, err := req.validate()
	if err != nil {
		return Confirmation{}, err
	}

	var detail models.ReservationDetail
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		resRepo := repositories.ReservationRepository{DB: tx}
		paxRepo := repositories.PassengerRepository{DB: tx}

		if err := ensureSeatsFree(ctx, paxRepo, req.Passengers, 0); err != nil {
			return err
		}
		if err := ensureCapacity(ctx, paxRepo, s.Pricing.SeatCapacity, len(req.Passengers)); err != nil {
			return err
		}

		code, err := s.uniqueCode(ctx, resRepo)
		if err != nil {
			return err
		}

		payable := 0
		for _, p := range req.Passengers {
			if !domain.IsFreeUnder6(p.Age) {
				payable++
			}
		}
		total, deposit := domain.ComputeTotals(payable, s.unitPrice())
		res := models.Reservation{
			Code:             code,
			AccessCode:       s.access(),
			ResponsibleName:  req.ResponsibleName,
			ResponsiblePhone: req.ResponsiblePhone,
			Congregation:     req.Congregation,
			SeatsTotal:       len(req.Passengers),
			SeatsPayable:     payable,
			TotalAmount:      total,
			DepositRequired:  deposit,
			Status:           string(domain.StatusPending),
			PaymentMethod:    req.PaymentMethod,
			IsHost:           req.IsHost,
		}
		res.ID, err = resRepo.Create(ctx, res)
		if err != nil {
			return err
		}
		passengers, err := insertPassengers(ctx, paxRepo, res.ID, req.Passengers)
		if err != nil {
			return err
		}
		_, res, err = reconcileTx(ctx, tx, res.ID, s.unitPrice())
		if err != nil {
			return err
		}
		detail = models.ReservationDetail{Reservation: res, Passengers: passengers, Payments: []models.Payment{}}
		return nil
	})
	if err != nil {
		return Confirmation{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "create", "code="+detail.Code+fmt.Sprintf(" seats=%d", detail.SeatsTotal))
	events.Emit(ctx, s.Events, s.RequestID, events.TopicReservationCreated, detail.Code, detail.Reservation)
	return s.confirmation(detail), nil
}

func (s BookingService) uniqueCode(ctx context.Context, repo repositories.ReservationRepository) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := s.code()
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.InternalError{Msg: "no se pudo generar un código de reservación"}
}

func (s BookingService) confirmation(d models.ReservationDetail) Confirmation {
	return Confirmation{
		Reservation: d,
		WhatsAppURL: WhatsAppLink(s.Pricing.ContactPhone, ConfirmationMessage(s.Pricing.TripName, d.Reservation)),
		TicketURL:   strings.TrimRight(s.PublicURL, "/") + "/api/public/reservations/" + d.Code + "/ticket?access_code=" + d.AccessCode,
	}
}

// LoadDetail reads a reservation with passengers and payments.
func LoadDetail(ctx context.Context, q intdb.Querier, res models.Reservation) (models.ReservationDetail, error) {
	passengers, err := repositories.PassengerRepository{DB: q}.ListByReservation(ctx, res.ID)
	if err != nil {
		return models.ReservationDetail{}, err
	}
	payments, err := repositories.PaymentRepository{DB: q}.ListByReservation(ctx, res.ID)
	if err != nil {
		return models.ReservationDetail{}, err
	}
	return models.ReservationDetail{Reservation: res, Passengers: passengers, Payments: payments}, nil
}

// Lookup returns a reservation for self-service when code and access code match.
func (s BookingService) Lookup(ctx context.Context, code, accessCode string) (models.ReservationDetail, error) {
	res, err := s.authorize(ctx, repositories.ReservationRepository{DB: s.db()}, code, accessCode)
	if err != nil {
		return models.ReservationDetail{}, err
	}
	return LoadDetail(ctx, s.db(), res)
}

// authorize resolves a reservation by code and checks its access code. A
// mismatch looks the same as an unknown code.
func (s BookingService) authorize(ctx context.Context, repo repositories.ReservationRepository, code, accessCode string) (models.Reservation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	accessCode = strings.ToUpper(strings.TrimSpace(accessCode))
	if code == "" || accessCode == "" {
		return models.Reservation{}, domain.ValidationError{Field: "access_code", Msg: "código y código de acceso son obligatorios"}
	}
	res, err := repo.GetByCode(ctx, code)
	if err != nil {
		return models.Reservation{}, err
	}
	if !strings.EqualFold(res.AccessCode, accessCode) {
		return models.Reservation{}, domain.NotFoundError{Resource: "reservación"}
	}
	return res, nil
}

// ReplacePassengers swaps the whole passenger list of a reservation in one
// transaction, re-reconciling before commit.
func (s BookingService) ReplacePassengers(ctx context.Context, code, accessCode string, in []models.PassengerInput) (models.ReservationDetail, error) {
	if len(in) == 0 {
		return models.ReservationDetail{}, domain.ValidationError{Field: "passengers", Msg: "se requiere al menos un pasajero"}
	}

	var detail models.ReservationDetail
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		resRepo := repositories.ReservationRepository{DB: tx}
		paxRepo := repositories.PassengerRepository{DB: tx}

		res, err := s.authorize(ctx, resRepo, code, accessCode)
		if err != nil {
			return err
		}
		res, err = resRepo.GetByIDForUpdate(ctx, res.ID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(res.Status) == domain.StatusCancelled {
			return domain.ConflictError{Resource: "reservación", Msg: "la reservación está cancelada"}
		}
		passengers, err := normalizePassengers(in, res.Congregation)
		if err != nil {
			return err
		}
		if err := ensureSeatsFree(ctx, paxRepo, passengers, res.ID); err != nil {
			return err
		}
		current, err := paxRepo.ListByReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		if err := ensureCapacity(ctx, paxRepo, s.Pricing.SeatCapacity, len(passengers)-len(current)); err != nil {
			return err
		}
		if err := paxRepo.DeleteByReservation(ctx, res.ID); err != nil {
			return err
		}
		rows, err := insertPassengers(ctx, paxRepo, res.ID, passengers)
		if err != nil {
			return err
		}
		_, res, err = reconcileTx(ctx, tx, res.ID, s.unitPrice())
		if err != nil {
			return err
		}
		payments, err := repositories.PaymentRepository{DB: tx}.ListByReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		detail = models.ReservationDetail{Reservation: res, Passengers: rows, Payments: payments}
		return nil
	})
	if err != nil {
		return models.ReservationDetail{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "replace_passengers", fmt.Sprintf("code=%s seats=%d", detail.Code, detail.SeatsTotal))
	return detail, nil
}

// Cancel marks a reservation as cancelled, releasing its seats.
func (s BookingService) Cancel(ctx context.Context, reservationID int64) (models.Reservation, error) {
	var res models.Reservation
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.ReservationRepository{DB: tx}
		var err error
		res, err = repo.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(res.Status) == domain.StatusCancelled {
			return nil
		}
		if err := repo.SetStatus(ctx, res.ID, string(domain.StatusCancelled)); err != nil {
			return err
		}
		res.Status = string(domain.StatusCancelled)
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "cancel", "code="+res.Code)
	events.Emit(ctx, s.Events, s.RequestID, events.TopicReservationCancelled, res.Code, res)
	return res, nil
}
