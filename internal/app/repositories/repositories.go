package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmeet/backend/internal/app/models"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// IMeetupRepository defines the interface for meetup state transitions and
// reads. The three transition methods are atomic: the membership change, the
// user's meetup reference and the system transcript entry commit together or
// not at all.
type IMeetupRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Meetup, error)
	GetDetail(ctx context.Context, id int64) (*models.Meetup, error)
	GetSummaries(ctx context.Context) ([]*models.Meetup, error)
	CreateWithCreator(ctx context.Context, meetup *models.Meetup, creator *models.User, entry *models.ChatEntry) error
	AdmitMember(ctx context.Context, meetupID int64, user *models.User, entry *models.ChatEntry) (*models.Meetup, error)
	RemoveMember(ctx context.Context, user *models.User, entry *models.ChatEntry) (*models.Meetup, error)
}

// IChatRepository defines the interface for transcript operations
type IChatRepository interface {
	Append(ctx context.Context, entry *models.ChatEntry) error
	ListByMeetup(ctx context.Context, meetupID int64, before *int64, limit int) ([]*models.ChatEntry, error)
}

// Repositories combines all repositories backed by one pool
type Repositories struct {
	UserRepository   *UserRepository
	MeetupRepository *MeetupRepository
	ChatRepository   *ChatRepository
}

// NewRepositories creates the repository container
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:   NewUserRepository(db),
		MeetupRepository: NewMeetupRepository(db),
		ChatRepository:   NewChatRepository(db),
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so statements shared
// between plain calls and transactions are written once.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
