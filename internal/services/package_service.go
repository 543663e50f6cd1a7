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
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

// PackageService manages attraction packages and ticket orders. Both are tied
// to trip reservations only through the free-text reservation code.
type PackageService struct {
	DB        *sql.DB
	RequestID string
}

// PackageInput is the create/update payload of a package reservation.
type PackageInput struct {
	ReservationCode string `json:"reservation_code"`
	PackageName     string `json:"package_name"`
	ContactName     string `json:"contact_name"`
	ContactPhone    string `json:"contact_phone"`
	PeopleCount     int    `json:"people_count"`
	TotalAmount     int64  `json:"total_amount"`
	Status          string `json:"status"`
}

// TicketOrderInput is the create/update payload of a ticket order.
type TicketOrderInput struct {
	ReservationCode string `json:"reservation_code"`
	Attraction      string `json:"attraction"`
	PeopleCount     int    `json:"people_count"`
	Amount          int64  `json:"amount"`
	PaymentStatus   string `json:"payment_status"`
}

func (s PackageService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validStatusOrDefault(raw string) (string, error) {
	st := strings.ToLower(strings.TrimSpace(raw))
	if st == "" {
		return string(domain.StatusPending), nil
	}
	if !domain.ReservationStatus(st).Valid() {
		return "", domain.ValidationError{Field: "status", Msg: "estado inválido"}
	}
	return st, nil
}

// resolveReservation links a package to the trip reservation whose code matches, if any.
func resolveReservation(ctx context.Context, q intdb.Querier, code string) (*int64, error) {
	if code == "" {
		return nil, nil
	}
	res, err := repositories.ReservationRepository{DB: q}.GetByCode(ctx, code)
	if domain.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res.ID, nil
}

func (in PackageInput) toModel() (models.PackageReservation, error) {
	p := models.PackageReservation{
		ReservationCode: normalizeCode(in.ReservationCode),
		PackageName:     utils.NormalizeSpace(in.PackageName),
		ContactName:     utils.NormalizeSpace(in.ContactName),
		ContactPhone:    utils.NormalizePhone(in.ContactPhone),
		PeopleCount:     in.PeopleCount,
		TotalAmount:     in.TotalAmount,
	}
	switch {
	case p.PackageName == "":
		return p, domain.ValidationError{Field: "package_name", Msg: "el nombre del paquete es obligatorio"}
	case p.ContactName == "":
		return p, domain.ValidationError{Field: "contact_name", Msg: "el contacto es obligatorio"}
	case p.ContactPhone != "" && !utils.ValidPhone(p.ContactPhone):
		return p, domain.ValidationError{Field: "contact_phone", Msg: "el teléfono debe tener 10 dígitos"}
	case p.PeopleCount < 1:
		return p, domain.ValidationError{Field: "people_count", Msg: "se requiere al menos una persona"}
	case p.TotalAmount < 0:
		return p, domain.ValidationError{Field: "total_amount", Msg: "monto inválido"}
	}
	st, err := validStatusOrDefault(in.Status)
	if err != nil {
		return p, err
	}
	p.Status = st
	return p, nil
}

func (s PackageService) List(ctx context.Context, code string) ([]models.PackageReservation, error) {
	return repositories.PackageRepository{DB: s.db()}.List(ctx, code)
}

func (s PackageService) Get(ctx context.Context, id int64) (models.PackageReservation, error) {
	return repositories.PackageRepository{DB: s.db()}.GetByID(ctx, id)
}

func (s PackageService) Create(ctx context.Context, in PackageInput) (models.PackageReservation, error) {
	p, err := in.toModel()
	if err != nil {
		return models.PackageReservation{}, err
	}
	if p.ReservationID, err = resolveReservation(ctx, s.db(), p.ReservationCode); err != nil {
		return models.PackageReservation{}, err
	}
	// A new package has no payments yet, so only cancelled may be forced.
	if p.Status != string(domain.StatusCancelled) {
		p.Status = string(domain.StatusPending)
	}
	p.ID, err = repositories.PackageRepository{DB: s.db()}.Create(ctx, p)
	if err != nil {
		return models.PackageReservation{}, err
	}
	utils.LogEvent(s.RequestID, "package", "create", fmt.Sprintf("package_id=%d code=%s", p.ID, p.ReservationCode))
	return p, nil
}

// Update edits a package and re-derives its status from the collected amount.
// A cancelled package stays cancelled unless the payload sets another status.
func (s PackageService) Update(ctx context.Context, id int64, in PackageInput) (models.PackageReservation, error) {
	p, err := in.toModel()
	if err != nil {
		return models.PackageReservation{}, err
	}
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.PackageRepository{DB: tx}
		current, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.ReservationID, err = resolveReservation(ctx, tx, p.ReservationCode); err != nil {
			return err
		}
		p.ID = id
		p.AmountPaid = current.AmountPaid
		p.CreatedAt = current.CreatedAt
		// Only an explicit status may cancel or reinstate a package.
		if strings.TrimSpace(in.Status) == "" {
			p.Status = current.Status
		}
		p.Status = string(domain.DeriveStatus(domain.ReservationStatus(p.Status), p.AmountPaid, p.TotalAmount, domain.DepositFor(p.TotalAmount)))
		return repo.Update(ctx, p)
	})
	if err != nil {
		return models.PackageReservation{}, err
	}
	utils.LogEvent(s.RequestID, "package", "update", fmt.Sprintf("package_id=%d", id))
	return p, nil
}

func (s PackageService) Delete(ctx context.Context, id int64) error {
	if err := (repositories.PackageRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "package", "delete", fmt.Sprintf("package_id=%d", id))
	return nil
}

func (in TicketOrderInput) toModel() (models.TicketOrder, error) {
	t := models.TicketOrder{
		ReservationCode: normalizeCode(in.ReservationCode),
		Attraction:      utils.NormalizeSpace(in.Attraction),
		PeopleCount:     in.PeopleCount,
		Amount:          in.Amount,
	}
	switch {
	case t.Attraction == "":
		return t, domain.ValidationError{Field: "attraction", Msg: "la atracción es obligatoria"}
	case t.PeopleCount < 1:
		return t, domain.ValidationError{Field: "people_count", Msg: "se requiere al menos una persona"}
	case t.Amount < 0:
		return t, domain.ValidationError{Field: "amount", Msg: "monto inválido"}
	}
	st, err := validStatusOrDefault(in.PaymentStatus)
	if err != nil {
		return t, err
	}
	t.PaymentStatus = st
	return t, nil
}

func (s PackageService) ListTickets(ctx context.Context, code string) ([]models.TicketOrder, error) {
	return repositories.PackageRepository{DB: s.db()}.ListTickets(ctx, code)
}

func (s PackageService) CreateTicket(ctx context.Context, in TicketOrderInput) (models.TicketOrder, error) {
	t, err := in.toModel()
	if err != nil {
		return models.TicketOrder{}, err
	}
	t.ID, err = repositories.PackageRepository{DB: s.db()}.CreateTicket(ctx, t)
	if err != nil {
		return models.TicketOrder{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "create", fmt.Sprintf("ticket_id=%d", t.ID))
	return t, nil
}

func (s PackageService) UpdateTicket(ctx context.Context, id int64, in TicketOrderInput) (models.TicketOrder, error) {
	t, err := in.toModel()
	if err != nil {
		return models.TicketOrder{}, err
	}
	repo := repositories.PackageRepository{DB: s.db()}
	current, err := repo.GetTicket(ctx, id)
	if err != nil {
		return models.TicketOrder{}, err
	}
	t.ID = id
	t.CreatedAt = current.CreatedAt
	if err := repo.UpdateTicket(ctx, t); err != nil {
		return models.TicketOrder{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "update", fmt.Sprintf("ticket_id=%d", id))
	return t, nil
}

func (s PackageService) DeleteTicket(ctx context.Context, id int64) error {
	if err := (repositories.PackageRepository{DB: s.db()}).DeleteTicket(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "ticket", "delete", fmt.Sprintf("ticket_id=%d", id))
	return nil
}
