package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
)

func chatFixture(t *testing.T, router *events.Router) (*fakeStore, ChatService, int64) {
	t.Helper()
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	membership := newTestMembershipService(store, router)
	snap, err := membership.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	return store, newTestChatService(store, router), snap.Meetup.ID
}

func TestAppendChat(t *testing.T) {
	router := events.NewRouter(zerolog.Nop())
	_, chat, meetupID := chatFixture(t, router)

	sub := events.NewSubscriber(4)
	router.Subscribe(events.MeetupChannel(meetupID), sub)

	entry, err := chat.Append(context.Background(), "u1", meetupID, "anyone here yet?")
	require.NoError(t, err)
	require.False(t, entry.IsSystem)
	require.Equal(t, "Anonymous otter", entry.AuthorName)
	require.Equal(t, "anyone here yet?", entry.Body)
	require.NotEmpty(t, entry.DisplayTime)

	evt := <-sub.Events()
	require.Equal(t, events.TypeChatAppended, evt.Type)
	require.Equal(t, entry.ID, evt.Entry.ID)
	require.Equal(t, "anyone here yet?", evt.Entry.Body)
}

func TestAppendChatRejectsBlank(t *testing.T) {
	_, chat, meetupID := chatFixture(t, events.NewRouter(zerolog.Nop()))

	_, err := chat.Append(context.Background(), "u1", meetupID, "   ")
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAppendChatMeetupNotFound(t *testing.T) {
	_, chat, _ := chatFixture(t, events.NewRouter(zerolog.Nop()))

	_, err := chat.Append(context.Background(), "u1", 404, "hello")
	require.ErrorIs(t, err, apperrors.ErrMeetupNotFound)
}

func TestTranscriptMemberOnly(t *testing.T) {
	store, chat, meetupID := chatFixture(t, events.NewRouter(zerolog.Nop()))
	store.addUser("u2", "Anonymous fox")

	_, err := chat.Transcript(context.Background(), "u2", meetupID, &dto.GetChatRequest{Limit: 10})
	require.ErrorIs(t, err, apperrors.ErrNotMember)
}

func TestTranscriptCausalOrderAndPaging(t *testing.T) {
	_, chat, meetupID := chatFixture(t, events.NewRouter(zerolog.Nop()))

	for i := 1; i <= 7; i++ {
		_, err := chat.Append(context.Background(), "u1", meetupID, fmt.Sprintf("line %d", i))
		require.NoError(t, err)
	}

	// Latest page: causal order, newest at the end.
	page, err := chat.Transcript(context.Background(), "u1", meetupID, &dto.GetChatRequest{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	require.Equal(t, "line 5", page.Entries[0].Body)
	require.Equal(t, "line 7", page.Entries[2].Body)
	require.NotNil(t, page.NextCursor)

	// Next page ends just before the previous one.
	page, err = chat.Transcript(context.Background(), "u1", meetupID, &dto.GetChatRequest{Before: page.NextCursor, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	require.Equal(t, "line 2", page.Entries[0].Body)
	require.Equal(t, "line 4", page.Entries[2].Body)

	// Final page holds the system creation entry and the first line.
	page, err = chat.Transcript(context.Background(), "u1", meetupID, &dto.GetChatRequest{Before: page.NextCursor, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.True(t, page.Entries[0].IsSystem)
	require.Equal(t, "line 1", page.Entries[1].Body)
	require.Nil(t, page.NextCursor)
}
