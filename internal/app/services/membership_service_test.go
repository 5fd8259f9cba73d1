package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
)

func createRequest() *dto.CreateMeetupRequest {
	return &dto.CreateMeetupRequest{
		Name:     "Board games",
		Place:    "Student hall",
		MeetTime: "Friday 6pm",
		Capacity: 3,
	}
}

func TestCreateMeetupAdmitsCreator(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	snap, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	require.True(t, snap.Success)
	require.NotEmpty(t, snap.Token)
	require.NotNil(t, snap.User.MeetupID)
	require.NotNil(t, snap.Meetup)
	require.Equal(t, 1, snap.Meetup.Occupancy)
	require.Len(t, snap.Meetup.Members, 1)
	require.Len(t, snap.Meetup.Transcript, 1)
	require.True(t, snap.Meetup.Transcript[0].IsSystem)
	require.Equal(t, "Anonymous otter created the meetup", snap.Meetup.Transcript[0].Body)
}

func TestCreateMeetupRejectsInvalidSpec(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	req := createRequest()
	req.Capacity = 0
	_, err := svc.CreateMeetup(context.Background(), "u1", req)
	require.ErrorIs(t, err, apperrors.ErrInvalidSpec)
	require.Empty(t, store.meetups)
}

func TestCreateMeetupRejectsMember(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	_, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)

	_, err = svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.ErrorIs(t, err, apperrors.ErrAlreadyMember)
	require.Len(t, store.meetups, 1)
}

func TestJoinMeetup(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	store.addUser("u2", "Anonymous fox")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	snap, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	meetupID := snap.Meetup.ID

	snap, err = svc.JoinMeetup(context.Background(), "u2", meetupID)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Meetup.Occupancy)
	require.Len(t, snap.Meetup.Members, 2)
	require.Equal(t, "Anonymous fox joined", snap.Meetup.Transcript[len(snap.Meetup.Transcript)-1].Body)
}

func TestJoinMeetupNotFound(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	_, err := svc.JoinMeetup(context.Background(), "u1", 404)
	require.ErrorIs(t, err, apperrors.ErrMeetupNotFound)
}

func TestJoinMeetupAlreadyMember(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	store.addUser("u2", "Anonymous fox")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	first, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	second, err := svc.CreateMeetup(context.Background(), "u2", createRequest())
	require.NoError(t, err)

	_, err = svc.JoinMeetup(context.Background(), "u1", second.Meetup.ID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	// Nothing moved: u1 still only occupies the first meetup.
	u1, err := store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, first.Meetup.ID, *u1.MeetupID)
}

func TestJoinMeetupCapacityRace(t *testing.T) {
	store := newFakeStore()
	store.addUser("owner", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	req := createRequest()
	req.Capacity = 2 // owner plus exactly one more seat
	snap, err := svc.CreateMeetup(context.Background(), "owner", req)
	require.NoError(t, err)
	meetupID := snap.Meetup.ID

	const contenders = 8
	for i := 0; i < contenders; i++ {
		store.addUser(string(rune('a'+i)), "Anonymous fox")
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.JoinMeetup(context.Background(), string(rune('a'+i)), meetupID)
		}(i)
	}
	wg.Wait()

	var admitted, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		default:
			require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
			rejected++
		}
	}
	require.Equal(t, 1, admitted)
	require.Equal(t, contenders-1, rejected)

	meetup, err := store.GetMeetupByID(context.Background(), meetupID)
	require.NoError(t, err)
	require.Equal(t, 2, meetup.Occupancy)
}

func TestLeaveMeetup(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	snap, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	meetupID := snap.Meetup.ID

	snap, err = svc.LeaveMeetup(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, snap.Meetup)
	require.Nil(t, snap.User.MeetupID)

	// The meetup survives at occupancy zero.
	meetup, err := store.GetMeetupByID(context.Background(), meetupID)
	require.NoError(t, err)
	require.Equal(t, 0, meetup.Occupancy)
}

func TestLeaveMeetupNotMember(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	_, err := svc.LeaveMeetup(context.Background(), "u1")
	require.ErrorIs(t, err, apperrors.ErrNotMember)
}

func TestTransitionEventOrder(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	store.addUser("u2", "Anonymous fox")
	router := events.NewRouter(zerolog.Nop())
	svc := newTestMembershipService(store, router)

	snap, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)
	meetupID := snap.Meetup.ID

	meetupSub := events.NewSubscriber(16)
	router.Subscribe(events.MeetupChannel(meetupID), meetupSub)
	lobbySub := events.NewSubscriber(16)
	router.Subscribe(events.Lobby, lobbySub)

	_, err = svc.JoinMeetup(context.Background(), "u2", meetupID)
	require.NoError(t, err)

	first := <-meetupSub.Events()
	require.Equal(t, events.TypeChatAppended, first.Type)
	require.Equal(t, "Anonymous fox joined", first.Entry.Body)
	require.True(t, first.Entry.IsSystem)

	second := <-meetupSub.Events()
	require.Equal(t, events.TypeMembershipChanged, second.Type)
	require.Equal(t, 2, *second.Occupancy)

	lobbyEvt := <-lobbySub.Events()
	require.Equal(t, events.TypeMeetupListChanged, lobbyEvt.Type)
	require.Equal(t, 2, lobbyEvt.Summary.Occupancy)
	require.True(t, lobbyEvt.Summary.Available)
}

func TestOverview(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	store.addUser("u2", "Anonymous fox")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	snap, err := svc.CreateMeetup(context.Background(), "u1", createRequest())
	require.NoError(t, err)

	// A member sees their own meetup in full and no summary list.
	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, overview.Meetup)
	require.Equal(t, snap.Meetup.ID, overview.Meetup.ID)
	require.Empty(t, overview.Meetups)

	// A non-member sees the summaries.
	overview, err = svc.Overview(context.Background(), "u2")
	require.NoError(t, err)
	require.Nil(t, overview.Meetup)
	require.Len(t, overview.Meetups, 1)
	require.Equal(t, 1, overview.Meetups[0].Occupancy)
	require.True(t, overview.Meetups[0].Available)
}

func TestSnapshotWithoutMeetup(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "Anonymous otter")
	svc := newTestMembershipService(store, events.NewRouter(zerolog.Nop()))

	snap, err := svc.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, snap.Success)
	require.NotEmpty(t, snap.Token)
	require.Nil(t, snap.Meetup)
}
