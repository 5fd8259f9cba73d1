package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/repositories"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
	"github.com/campusmeet/backend/internal/pkg/metrics"
)

// ChatService defines the interface for transcript operations
type ChatService interface {
	// Transcript returns one cursor page of a meetup transcript in causal
	// order. Only current members may read a transcript.
	Transcript(ctx context.Context, userID string, meetupID int64, req *dto.GetChatRequest) (*dto.ChatPageResponse, error)
	// Append records one user-authored line and fans it out on the meetup
	// channel.
	Append(ctx context.Context, userID string, meetupID int64, text string) (*dto.ChatEntryResponse, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	userRepo   repositories.IUserRepository
	meetupRepo repositories.IMeetupRepository
	chatRepo   repositories.IChatRepository
	router     *events.Router
	logger     zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	userRepo repositories.IUserRepository,
	meetupRepo repositories.IMeetupRepository,
	chatRepo repositories.IChatRepository,
	router *events.Router,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		userRepo:   userRepo,
		meetupRepo: meetupRepo,
		chatRepo:   chatRepo,
		router:     router,
		logger:     logger,
	}
}

func (s *chatServiceImpl) Transcript(ctx context.Context, userID string, meetupID int64, req *dto.GetChatRequest) (*dto.ChatPageResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MeetupID == nil || *user.MeetupID != meetupID {
		return nil, apperrors.ErrNotMember
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.chatRepo.ListByMeetup(ctx, meetupID, req.Before, limit)
	if err != nil {
		return nil, err
	}

	page := &dto.ChatPageResponse{
		Entries: lo.Map(entries, func(e *models.ChatEntry, _ int) dto.ChatEntryResponse {
			return dto.ToChatEntryResponse(e)
		}),
	}
	if len(entries) == limit {
		// Entries are causal, oldest first; the next page ends before it.
		cursor := entries[0].ID
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *chatServiceImpl) Append(ctx context.Context, userID string, meetupID int64, text string) (*dto.ChatEntryResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrValidationFailed
	}

	if _, err := s.meetupRepo.GetByID(ctx, meetupID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &models.ChatEntry{
		MeetupID:   meetupID,
		AuthorID:   &user.ID,
		AuthorName: user.Name,
		Body:       text,
	}
	if err := s.chatRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	metrics.ChatEntriesTotal.Inc()

	s.router.Publish(events.MeetupChannel(meetupID), events.ChatAppended(meetupID, events.Entry{
		ID:          entry.ID,
		AuthorName:  entry.AuthorName,
		Body:        entry.Body,
		DisplayTime: entry.DisplayTime,
	}))

	resp := dto.ToChatEntryResponse(entry)
	return &resp, nil
}
