package events

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testRouter() *Router {
	return NewRouter(zerolog.Nop())
}

func collect(t *testing.T, s *Subscriber, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for len(out) < n {
		select {
		case evt, ok := <-s.Events():
			require.True(t, ok, "subscriber queue closed early")
			out = append(out, evt)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	r := testRouter()
	a := NewSubscriber(8)
	b := NewSubscriber(8)
	r.Subscribe(Lobby, a)
	r.Subscribe(Lobby, b)

	evt := MeetupListChanged(Summary{ID: 1, Name: "Study", Capacity: 2, Occupancy: 1, Available: true})
	r.Publish(Lobby, evt)

	require.Equal(t, evt, collect(t, a, 1)[0])
	require.Equal(t, evt, collect(t, b, 1)[0])
}

func TestPublish_ChannelsAreIsolated(t *testing.T) {
	r := testRouter()
	lobby := NewSubscriber(8)
	meetup := NewSubscriber(8)
	r.Subscribe(Lobby, lobby)
	r.Subscribe(MeetupChannel(7), meetup)

	r.Publish(MeetupChannel(7), MembershipChanged(7, 2))

	require.Equal(t, TypeMembershipChanged, collect(t, meetup, 1)[0].Type)
	select {
	case evt := <-lobby.Events():
		t.Fatalf("lobby subscriber received %s from a meetup channel", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_PreservesOrderWithinOperation(t *testing.T) {
	r := testRouter()
	s := NewSubscriber(8)
	ch := MeetupChannel(3)
	r.Subscribe(ch, s)

	// A join publishes its system entry and the occupancy change together.
	r.Publish(ch,
		ChatAppended(3, Entry{AuthorName: "Anonymous Otter", Body: "Anonymous Otter joined", IsSystem: true}),
		MembershipChanged(3, 1),
	)

	got := collect(t, s, 2)
	require.Equal(t, TypeChatAppended, got[0].Type)
	require.Equal(t, TypeMembershipChanged, got[1].Type)
}

func TestPublish_SequentialOrderPerChannel(t *testing.T) {
	r := testRouter()
	s := NewSubscriber(128)
	r.Subscribe(Lobby, s)

	for i := 0; i < 100; i++ {
		r.Publish(Lobby, MeetupListChanged(Summary{ID: int64(i)}))
	}
	got := collect(t, s, 100)
	for i, evt := range got {
		require.Equal(t, int64(i), evt.Summary.ID)
	}
}

func TestPublish_DoesNotBlockOnFullSubscriber(t *testing.T) {
	r := testRouter()
	slow := NewSubscriber(1)
	r.Subscribe(Lobby, slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			r.Publish(Lobby, MeetupListChanged(Summary{ID: int64(i)}))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	// The first event fills the buffer and must still be intact.
	require.Equal(t, int64(0), collect(t, slow, 1)[0].Summary.ID)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	r := testRouter()
	s := NewSubscriber(8)
	r.Subscribe(Lobby, s)
	require.Equal(t, 1, r.SubscriberCount(Lobby))

	r.Unsubscribe(Lobby, s)
	r.Unsubscribe(Lobby, s)
	require.Equal(t, 0, r.SubscriberCount(Lobby))

	r.Publish(Lobby, MeetupListChanged(Summary{ID: 1}))
	select {
	case evt := <-s.Events():
		t.Fatalf("unsubscribed subscriber received %s", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_Idempotent(t *testing.T) {
	r := testRouter()
	s := NewSubscriber(8)
	r.Subscribe(Lobby, s)
	r.Subscribe(Lobby, s)
	require.Equal(t, 1, r.SubscriberCount(Lobby))

	r.Publish(Lobby, MeetupListChanged(Summary{ID: 1}))
	collect(t, s, 1)
	select {
	case evt := <-s.Events():
		t.Fatalf("duplicate delivery %s after double subscribe", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelease_ClosesQueueAndStopsDelivery(t *testing.T) {
	r := testRouter()
	s := NewSubscriber(8)
	r.Subscribe(Lobby, s)
	r.Subscribe(MeetupChannel(1), s)

	r.Release(s)
	require.Equal(t, 0, r.SubscriberCount(Lobby))
	require.Equal(t, 0, r.SubscriberCount(MeetupChannel(1)))

	// Publishing after release must not panic on the closed queue.
	r.Publish(Lobby, MeetupListChanged(Summary{ID: 1}))

	_, ok := <-s.Events()
	require.False(t, ok)
}

func TestPublish_ConcurrentWithSubscribeChurn(t *testing.T) {
	r := testRouter()
	stable := NewSubscriber(4096)
	r.Subscribe(Lobby, stable)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r.Publish(Lobby, MeetupListChanged(Summary{ID: int64(i)}))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s := NewSubscriber(1)
			r.Subscribe(Lobby, s)
			r.Release(s)
		}
	}()
	wg.Wait()

	got := collect(t, stable, 500)
	for i, evt := range got {
		require.Equal(t, int64(i), evt.Summary.ID)
	}
}
