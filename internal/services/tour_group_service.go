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

type TourGroupService struct {
	DB        *sql.DB
	RequestID string
}

// TourGroupInput is the create/update payload of a group.
type TourGroupInput struct {
	Name        string `json:"name"`
	ScheduledAt string `json:"scheduled_at"`
	MaxMembers  int    `json:"max_members"`
	BethelCode  string `json:"bethel_code"`
}

func (s TourGroupService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (in TourGroupInput) toModel() (models.TourGroup, error) {
	g := models.TourGroup{
		Name:       utils.NormalizeSpace(in.Name),
		MaxMembers: in.MaxMembers,
		BethelCode: strings.TrimSpace(in.BethelCode),
	}
	if g.Name == "" {
		return g, domain.ValidationError{Field: "name", Msg: "el nombre del grupo es obligatorio"}
	}
	if g.MaxMembers < 0 {
		return g, domain.ValidationError{Field: "max_members", Msg: "valor inválido"}
	}
	if strings.TrimSpace(in.ScheduledAt) != "" {
		t, err := utils.ParseDateTime(in.ScheduledAt)
		if err != nil {
			return g, domain.ValidationError{Field: "scheduled_at", Msg: "fecha inválida", Err: err}
		}
		g.ScheduledAt = &t
	}
	return g, nil
}

func (s TourGroupService) List(ctx context.Context) ([]models.TourGroup, error) {
	return repositories.TourGroupRepository{DB: s.db()}.List(ctx)
}

// Get returns a group with its members.
func (s TourGroupService) Get(ctx context.Context, id int64) (models.TourGroupDetail, error) {
	repo := repositories.TourGroupRepository{DB: s.db()}
	g, err := repo.GetByID(ctx, id)
	if err != nil {
		return models.TourGroupDetail{}, err
	}
	members, err := repo.Members(ctx, id)
	if err != nil {
		return models.TourGroupDetail{}, err
	}
	return models.TourGroupDetail{TourGroup: g, Members: members}, nil
}

func (s TourGroupService) Create(ctx context.Context, in TourGroupInput) (models.TourGroup, error) {
	g, err := in.toModel()
	if err != nil {
		return models.TourGroup{}, err
	}
	repo := repositories.TourGroupRepository{DB: s.db()}
	id, err := repo.Create(ctx, g)
	if err != nil {
		return models.TourGroup{}, err
	}
	g.ID = id
	utils.LogEvent(s.RequestID, "tour_group", "create", fmt.Sprintf("group_id=%d", id))
	return g, nil
}

// Update edits a group. Lowering max_members below the current size is rejected.
func (s TourGroupService) Update(ctx context.Context, id int64, in TourGroupInput) (models.TourGroup, error) {
	g, err := in.toModel()
	if err != nil {
		return models.TourGroup{}, err
	}
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.TourGroupRepository{DB: tx}
		current, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.MaxMembers > 0 && g.MaxMembers < current.MemberCount {
			return domain.ConflictError{Resource: "grupo", Msg: fmt.Sprintf("el grupo ya tiene %d integrantes", current.MemberCount)}
		}
		g.ID = id
		g.CaptainID = current.CaptainID
		g.MemberCount = current.MemberCount
		return repo.Update(ctx, g)
	})
	if err != nil {
		return models.TourGroup{}, err
	}
	utils.LogEvent(s.RequestID, "tour_group", "update", fmt.Sprintf("group_id=%d", id))
	return g, nil
}

func (s TourGroupService) Delete(ctx context.Context, id int64) error {
	if err := (repositories.TourGroupRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tour_group", "delete", fmt.Sprintf("group_id=%d", id))
	return nil
}

// AddMember assigns a passenger to a group. The passenger must belong to an
// active reservation and to no other group, and the group must have room.
func (s TourGroupService) AddMember(ctx context.Context, groupID, passengerID int64) (models.TourGroupMember, error) {
	var member models.TourGroupMember
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		groups := repositories.TourGroupRepository{DB: tx}

		g, err := groups.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		p, err := repositories.PassengerRepository{DB: tx}.GetByID(ctx, passengerID)
		if err != nil {
			return err
		}
		res, err := repositories.ReservationRepository{DB: tx}.GetByID(ctx, p.ReservationID)
		if err != nil {
			return err
		}
		if domain.ReservationStatus(res.Status) == domain.StatusCancelled {
			return domain.ConflictError{Resource: "pasajero", Msg: "la reservación del pasajero está cancelada"}
		}
		other, inGroup, err := groups.GroupOfPassenger(ctx, passengerID)
		if err != nil {
			return err
		}
		if inGroup {
			if other == groupID {
				return domain.ConflictError{Resource: "pasajero", Msg: "el pasajero ya pertenece a este grupo"}
			}
			return domain.ConflictError{Resource: "pasajero", Msg: "el pasajero ya pertenece a otro grupo"}
		}
		if g.MaxMembers > 0 && g.MemberCount >= g.MaxMembers {
			return domain.ConflictError{Resource: "grupo", Msg: "el grupo está lleno"}
		}
		id, err := groups.AddMember(ctx, groupID, passengerID, res.ID)
		if err != nil {
			return err
		}
		member = models.TourGroupMember{
			ID:              id,
			GroupID:         groupID,
			PassengerID:     passengerID,
			ReservationID:   res.ID,
			PassengerName:   p.Name,
			ReservationCode: res.Code,
		}
		return nil
	})
	if err != nil {
		return models.TourGroupMember{}, err
	}
	utils.LogEvent(s.RequestID, "tour_group", "add_member", fmt.Sprintf("group_id=%d passenger_id=%d", groupID, passengerID))
	return member, nil
}

// RemoveMember takes a passenger out of a group, clearing the captain if needed.
func (s TourGroupService) RemoveMember(ctx context.Context, groupID, passengerID int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		return repositories.TourGroupRepository{DB: tx}.RemoveMember(ctx, groupID, passengerID)
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tour_group", "remove_member", fmt.Sprintf("group_id=%d passenger_id=%d", groupID, passengerID))
	return nil
}

// SetCaptain names a member as captain; a nil passenger clears it.
func (s TourGroupService) SetCaptain(ctx context.Context, groupID int64, passengerID *int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		groups := repositories.TourGroupRepository{DB: tx}
		if _, err := groups.GetByIDForUpdate(ctx, groupID); err != nil {
			return err
		}
		if passengerID != nil {
			other, inGroup, err := groups.GroupOfPassenger(ctx, *passengerID)
			if err != nil {
				return err
			}
			if !inGroup || other != groupID {
				return domain.ValidationError{Field: "passenger_id", Msg: "el capitán debe ser integrante del grupo"}
			}
		}
		return groups.SetCaptain(ctx, groupID, passengerID)
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tour_group", "set_captain", fmt.Sprintf("group_id=%d", groupID))
	return nil
}

// Unassigned lists passengers of active reservations that have no group.
func (s TourGroupService) Unassigned(ctx context.Context) ([]models.Passenger, error) {
	return repositories.PassengerRepository{DB: s.db()}.ListUnassigned(ctx)
}

