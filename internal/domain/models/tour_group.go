package models

import "time"

// TourGroup is a sub-group of passengers with an optional schedule and captain.
type TourGroup struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	MaxMembers  int        `json:"max_members"`
	BethelCode  string     `json:"bethel_code,omitempty"`
	CaptainID   *int64     `json:"captain_id"`
	MemberCount int        `json:"member_count"`
}

// TourGroupMember links a passenger (and its reservation) to a group.
type TourGroupMember struct {
	ID              int64  `json:"id"`
	GroupID         int64  `json:"group_id"`
	PassengerID     int64  `json:"passenger_id"`
	ReservationID   int64  `json:"reservation_id"`
	PassengerName   string `json:"passenger_name"`
	ReservationCode string `json:"reservation_code"`
}

// TourGroupDetail is a group with its members.
type TourGroupDetail struct {
	TourGroup
	Members []TourGroupMember `json:"members"`
}
