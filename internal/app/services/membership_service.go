package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/repositories"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
	"github.com/campusmeet/backend/internal/pkg/auth"
	"github.com/campusmeet/backend/internal/pkg/metrics"
)

// snapshotTranscriptLen is how many trailing transcript entries a session
// snapshot carries; older entries are paged over the chat endpoint.
const snapshotTranscriptLen = 50

// MembershipService defines the interface for membership transitions and the
// session snapshots reissued after them
type MembershipService interface {
	CreateMeetup(ctx context.Context, userID string, req *dto.CreateMeetupRequest) (*dto.SnapshotResponse, error)
	JoinMeetup(ctx context.Context, userID string, meetupID int64) (*dto.SnapshotResponse, error)
	LeaveMeetup(ctx context.Context, userID string) (*dto.SnapshotResponse, error)
	Snapshot(ctx context.Context, userID string) (*dto.SnapshotResponse, error)
	Overview(ctx context.Context, userID string) (*dto.MeetupOverviewResponse, error)
}

// membershipServiceImpl implements MembershipService
type membershipServiceImpl struct {
	userRepo   repositories.IUserRepository
	meetupRepo repositories.IMeetupRepository
	chatRepo   repositories.IChatRepository
	router     *events.Router
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	userRepo repositories.IUserRepository,
	meetupRepo repositories.IMeetupRepository,
	chatRepo repositories.IChatRepository,
	router *events.Router,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) MembershipService {
	return &membershipServiceImpl{
		userRepo:   userRepo,
		meetupRepo: meetupRepo,
		chatRepo:   chatRepo,
		router:     router,
		jwtService: jwtService,
		logger:     logger,
	}
}

// CreateMeetup creates a meetup and admits its creator as the first member.
// A caller already occupying a meetup gets ErrAlreadyMember and no meetup is
// created.
func (s *membershipServiceImpl) CreateMeetup(ctx context.Context, userID string, req *dto.CreateMeetupRequest) (*dto.SnapshotResponse, error) {
	if req.Capacity <= 0 || req.Name == "" {
		return nil, apperrors.ErrInvalidSpec
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsMember() {
		return nil, apperrors.ErrAlreadyMember
	}

	meetup := &models.Meetup{
		Name:     req.Name,
		Place:    req.Place,
		MeetTime: req.MeetTime,
		Capacity: req.Capacity,
	}
	entry := systemEntry(fmt.Sprintf("%s created the meetup", user.Name))

	if err := s.meetupRepo.CreateWithCreator(ctx, meetup, user, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("meetupID", meetup.ID).
		Str("userID", user.ID).
		Int("capacity", meetup.Capacity).
		Msg("Meetup created")
	metrics.JoinsTotal.Inc()

	s.publishTransition(meetup, entry)
	return s.snapshot(ctx, user, "meetup created")
}

// JoinMeetup admits the user into a meetup. The capacity check and the
// admission are one atomic step in the repository; every rejection reason
// surfaces as its own sentinel.
func (s *membershipServiceImpl) JoinMeetup(ctx context.Context, userID string, meetupID int64) (*dto.SnapshotResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := systemEntry(fmt.Sprintf("%s joined", user.Name))
	meetup, err := s.meetupRepo.AdmitMember(ctx, meetupID, user, entry)
	if err != nil {
		if errors.Is(err, apperrors.ErrCapacityExceeded) {
			metrics.JoinsRejectedTotal.Inc()
			s.logger.Info().
				Int64("meetupID", meetupID).
				Str("userID", userID).
				Msg("Join rejected, meetup full")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("meetupID", meetupID).
		Str("userID", user.ID).
		Int("occupancy", meetup.Occupancy).
		Msg("User joined meetup")
	metrics.JoinsTotal.Inc()

	s.publishTransition(meetup, entry)
	return s.snapshot(ctx, user, "joined meetup")
}

// LeaveMeetup removes the user from their current meetup. The meetup survives
// at occupancy zero.
func (s *membershipServiceImpl) LeaveMeetup(ctx context.Context, userID string) (*dto.SnapshotResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := systemEntry(fmt.Sprintf("%s left", user.Name))
	meetup, err := s.meetupRepo.RemoveMember(ctx, user, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("meetupID", meetup.ID).
		Str("userID", user.ID).
		Int("occupancy", meetup.Occupancy).
		Msg("User left meetup")
	metrics.LeavesTotal.Inc()

	s.publishTransition(meetup, entry)
	return s.snapshot(ctx, user, "left meetup")
}

// Snapshot reissues the session snapshot without changing anything.
func (s *membershipServiceImpl) Snapshot(ctx context.Context, userID string) (*dto.SnapshotResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, user, "")
}

// Overview renders the meetups landing state: a member sees their own meetup
// in full, everyone else sees the summary list.
func (s *membershipServiceImpl) Overview(ctx context.Context, userID string) (*dto.MeetupOverviewResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	resp := &dto.MeetupOverviewResponse{
		Success: true,
		Name:    user.Name,
		Token:   token,
		Meetups: []dto.MeetupSummaryResponse{},
	}

	if user.IsMember() {
		meetup, err := s.loadMeetupDetail(ctx, *user.MeetupID)
		if err != nil {
			return nil, err
		}
		resp.Meetup = meetup
		return resp, nil
	}

	summaries, err := s.meetupRepo.GetSummaries(ctx)
	if err != nil {
		return nil, err
	}
	resp.Meetups = lo.Map(summaries, func(m *models.Meetup, _ int) dto.MeetupSummaryResponse {
		return dto.ToMeetupSummaryResponse(m)
	})
	return resp, nil
}

// snapshot builds the post-transition session snapshot. The transition has
// already committed, so a failure here is an internal error, never a
// rollback.
func (s *membershipServiceImpl) snapshot(ctx context.Context, user *models.User, message string) (*dto.SnapshotResponse, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to issue token")
		return nil, apperrors.NewInternalError(err)
	}

	resp := &dto.SnapshotResponse{
		Success: true,
		Message: message,
		Token:   token,
		User:    dto.ToUserResponse(user),
	}

	if user.IsMember() {
		meetup, err := s.loadMeetupDetail(ctx, *user.MeetupID)
		if err != nil {
			return nil, err
		}
		resp.Meetup = meetup
	}

	return resp, nil
}

func (s *membershipServiceImpl) loadMeetupDetail(ctx context.Context, meetupID int64) (*dto.MeetupResponse, error) {
	meetup, err := s.meetupRepo.GetDetail(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	transcript, err := s.chatRepo.ListByMeetup(ctx, meetupID, nil, snapshotTranscriptLen)
	if err != nil {
		return nil, err
	}
	meetup.Transcript = transcript

	resp := dto.ToMeetupResponse(meetup)
	return &resp, nil
}

// publishTransition fans out one transition: transcript entry and occupancy
// on the meetup channel in that order, then the summary on the lobby.
func (s *membershipServiceImpl) publishTransition(meetup *models.Meetup, entry *models.ChatEntry) {
	s.router.Publish(events.MeetupChannel(meetup.ID),
		events.ChatAppended(meetup.ID, events.Entry{
			ID:          entry.ID,
			Body:        entry.Body,
			IsSystem:    true,
			DisplayTime: entry.DisplayTime,
		}),
		events.MembershipChanged(meetup.ID, meetup.Occupancy),
	)
	s.router.Publish(events.Lobby, events.MeetupListChanged(events.Summary{
		ID:        meetup.ID,
		Name:      meetup.Name,
		Place:     meetup.Place,
		MeetTime:  meetup.MeetTime,
		Capacity:  meetup.Capacity,
		Occupancy: meetup.Occupancy,
		Available: meetup.IsAvailable(),
	}))
}

func systemEntry(body string) *models.ChatEntry {
	return &models.ChatEntry{
		Body:     body,
		IsSystem: true,
	}
}
