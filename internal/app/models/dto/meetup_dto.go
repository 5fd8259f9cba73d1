package dto

import (
	"time"

	"github.com/campusmeet/backend/internal/app/models"
)

// CreateMeetupRequest is the caller-supplied meetup spec.
type CreateMeetupRequest struct {
	Name     string `json:"name" binding:"required" example:"Study group"`
	Place    string `json:"place" binding:"required" example:"Library cafe"`
	MeetTime string `json:"meetTime" binding:"required" example:"Friday 6pm"`
	Capacity int    `json:"capacity" binding:"required,gt=0" example:"4"`
}

// MeetupSummaryResponse is the lobby-level projection of a meetup: no member
// list, no transcript.
type MeetupSummaryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Place     string `json:"place"`
	MeetTime  string `json:"meetTime"`
	Capacity  int    `json:"capacity"`
	Occupancy int    `json:"occupancy"`
	Available bool   `json:"available"`
}

// MemberResponse is the public projection of a meetup member.
type MemberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MeetupResponse is the full projection of a meetup as seen by one of its
// members, transcript included.
type MeetupResponse struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Place      string              `json:"place"`
	MeetTime   string              `json:"meetTime"`
	Capacity   int                 `json:"capacity"`
	Occupancy  int                 `json:"occupancy"`
	Available  bool                `json:"available"`
	Members    []MemberResponse    `json:"members"`
	Transcript []ChatEntryResponse `json:"transcript"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Gender   models.Gender `json:"gender"`
	MeetupID *int64        `json:"meetupId,omitempty"`
}

// SnapshotResponse is the session snapshot reissued after every mutating
// operation: the user projection, the occupied meetup (if any) and a fresh
// token caching the same state.
type SnapshotResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token"`
	User    UserResponse    `json:"user"`
	Meetup  *MeetupResponse `json:"meetup"`
}

// MeetupOverviewResponse mirrors the original meetups endpoint: a member gets
// their meetup in full and an empty summary list, everyone else gets the
// summaries and a nil meetup.
type MeetupOverviewResponse struct {
	Success bool                    `json:"success"`
	Name    string                  `json:"name"`
	Token   string                  `json:"token"`
	Meetup  *MeetupResponse         `json:"meetup"`
	Meetups []MeetupSummaryResponse `json:"meetups"`
}

// ToUserResponse maps a user model to its public projection.
func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Gender:   u.Gender,
		MeetupID: u.MeetupID,
	}
}

// ToMeetupSummaryResponse maps a meetup model to its lobby projection.
func ToMeetupSummaryResponse(m *models.Meetup) MeetupSummaryResponse {
	return MeetupSummaryResponse{
		ID:        m.ID,
		Name:      m.Name,
		Place:     m.Place,
		MeetTime:  m.MeetTime,
		Capacity:  m.Capacity,
		Occupancy: m.Occupancy,
		Available: m.IsAvailable(),
	}
}

// ToMeetupResponse maps a meetup model, members and transcript included.
func ToMeetupResponse(m *models.Meetup) MeetupResponse {
	members := make([]MemberResponse, 0, len(m.Members))
	for _, u := range m.Members {
		members = append(members, MemberResponse{ID: u.ID, Name: u.Name})
	}
	transcript := make([]ChatEntryResponse, 0, len(m.Transcript))
	for _, e := range m.Transcript {
		transcript = append(transcript, ToChatEntryResponse(e))
	}
	return MeetupResponse{
		ID:         m.ID,
		Name:       m.Name,
		Place:      m.Place,
		MeetTime:   m.MeetTime,
		Capacity:   m.Capacity,
		Occupancy:  m.Occupancy,
		Available:  m.IsAvailable(),
		Members:    members,
		Transcript: transcript,
		CreatedAt:  m.CreatedAt,
	}
}
