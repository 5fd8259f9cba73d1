package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
	"github.com/campusmeet/backend/internal/pkg/auth"
	"github.com/campusmeet/backend/internal/pkg/helpers"
)

// fakeStore backs all three repository interfaces with one mutex, so the
// membership transitions keep their all-or-nothing shape in tests.
type fakeStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	meetups    map[int64]*models.Meetup
	members    map[int64][]string
	entries    map[int64][]*models.ChatEntry
	nextMeetup int64
	nextEntry  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*models.User),
		meetups: make(map[int64]*models.Meetup),
		members: make(map[int64][]string),
		entries: make(map[int64][]*models.ChatEntry),
	}
}

func (f *fakeStore) addUser(id, name string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: id, Name: name, Gender: models.GenderMale, CreatedAt: time.Now()}
	f.users[id] = u
	return u
}

// IUserRepository

func (f *fakeStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; ok {
		return apperrors.ErrAlreadyRegistered
	}
	user.CreatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// IMeetupRepository

func (f *fakeStore) GetMeetupByID(ctx context.Context, id int64) (*models.Meetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meetupLocked(id)
}

func (f *fakeStore) GetDetail(ctx context.Context, id int64) (*models.Meetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.meetupLocked(id)
	if err != nil {
		return nil, err
	}
	for _, uid := range f.members[id] {
		clone := *f.users[uid]
		m.Members = append(m.Members, &clone)
	}
	return m, nil
}

func (f *fakeStore) GetSummaries(ctx context.Context) ([]*models.Meetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Meetup
	for id := range f.meetups {
		m, _ := f.meetupLocked(id)
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) CreateWithCreator(ctx context.Context, meetup *models.Meetup, creator *models.User, entry *models.ChatEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.users[creator.ID]
	if stored == nil {
		return apperrors.ErrUserNotFound
	}
	if stored.MeetupID != nil {
		return apperrors.ErrAlreadyMember
	}
	f.nextMeetup++
	meetup.ID = f.nextMeetup
	meetup.CreatedAt = time.Now()
	meetup.Occupancy = 1
	clone := *meetup
	f.meetups[meetup.ID] = &clone
	f.members[meetup.ID] = []string{creator.ID}
	stored.MeetupID = &meetup.ID
	creator.MeetupID = &meetup.ID
	entry.MeetupID = meetup.ID
	f.appendLocked(entry)
	return nil
}

func (f *fakeStore) AdmitMember(ctx context.Context, meetupID int64, user *models.User, entry *models.ChatEntry) (*models.Meetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetups[meetupID]
	if !ok {
		return nil, apperrors.ErrMeetupNotFound
	}
	stored := f.users[user.ID]
	if stored == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if stored.MeetupID != nil {
		return nil, apperrors.ErrAlreadyMember
	}
	if len(f.members[meetupID]) >= m.Capacity {
		return nil, apperrors.ErrCapacityExceeded
	}
	f.members[meetupID] = append(f.members[meetupID], user.ID)
	stored.MeetupID = &meetupID
	user.MeetupID = &meetupID
	entry.MeetupID = meetupID
	f.appendLocked(entry)
	return f.meetupLocked(meetupID)
}

func (f *fakeStore) RemoveMember(ctx context.Context, user *models.User, entry *models.ChatEntry) (*models.Meetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.users[user.ID]
	if stored == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if stored.MeetupID == nil {
		return nil, apperrors.ErrNotMember
	}
	meetupID := *stored.MeetupID
	kept := f.members[meetupID][:0]
	for _, uid := range f.members[meetupID] {
		if uid != user.ID {
			kept = append(kept, uid)
		}
	}
	f.members[meetupID] = kept
	stored.MeetupID = nil
	user.MeetupID = nil
	entry.MeetupID = meetupID
	f.appendLocked(entry)
	return f.meetupLocked(meetupID)
}

// IChatRepository

func (f *fakeStore) Append(ctx context.Context, entry *models.ChatEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendLocked(entry)
	return nil
}

func (f *fakeStore) ListByMeetup(ctx context.Context, meetupID int64, before *int64, limit int) ([]*models.ChatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var page []*models.ChatEntry
	all := f.entries[meetupID]
	for i := len(all) - 1; i >= 0 && len(page) < limit; i-- {
		if before != nil && all[i].ID >= *before {
			continue
		}
		page = append(page, all[i])
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (f *fakeStore) meetupLocked(id int64) (*models.Meetup, error) {
	m, ok := f.meetups[id]
	if !ok {
		return nil, apperrors.ErrMeetupNotFound
	}
	clone := *m
	clone.Occupancy = len(f.members[id])
	clone.Members = nil
	clone.Transcript = nil
	return &clone, nil
}

func (f *fakeStore) appendLocked(entry *models.ChatEntry) {
	f.nextEntry++
	entry.ID = f.nextEntry
	entry.CreatedAt = time.Now()
	entry.DisplayTime = helpers.FormatClock(entry.CreatedAt)
	clone := *entry
	f.entries[entry.MeetupID] = append(f.entries[entry.MeetupID], &clone)
}

// meetupRepoAdapter renames GetMeetupByID back to the interface method name
// without colliding with the user repository's GetByID on the shared store.
type meetupRepoAdapter struct{ *fakeStore }

func (a meetupRepoAdapter) GetByID(ctx context.Context, id int64) (*models.Meetup, error) {
	return a.GetMeetupByID(ctx, id)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:   "service-test-secret",
		TokenExp:    time.Hour,
		TokenIssuer: "campusmeet-test",
	})
}

func newTestMembershipService(store *fakeStore, router *events.Router) MembershipService {
	return NewMembershipService(store, meetupRepoAdapter{store}, store, router, testJWTService(), zerolog.Nop())
}

func newTestChatService(store *fakeStore, router *events.Router) ChatService {
	return NewChatService(store, meetupRepoAdapter{store}, store, router, zerolog.Nop())
}
