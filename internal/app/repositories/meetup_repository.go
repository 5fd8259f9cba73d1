package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/db"
	"github.com/campusmeet/backend/internal/pkg/apperrors"
	"github.com/campusmeet/backend/internal/pkg/dberrors"
)

// MeetupRepository handles database operations for meetups and their member
// set. Membership transitions run as row-locked transactions: the meetup row
// lock serializes concurrent admissions, so the capacity check and the member
// insert are one atomic step.
type MeetupRepository struct {
	db *pgxpool.Pool
}

// NewMeetupRepository creates a new MeetupRepository
func NewMeetupRepository(db *pgxpool.Pool) *MeetupRepository {
	return &MeetupRepository{db: db}
}

// GetByID retrieves a meetup with its occupancy, without members or transcript
func (r *MeetupRepository) GetByID(ctx context.Context, id int64) (*models.Meetup, error) {
	query := squirrel.Select(
		"m.id", "m.name", "m.place", "m.meet_time", "m.capacity", "m.created_at",
		"(SELECT COUNT(*) FROM meetup_members mm WHERE mm.meetup_id = m.id) AS occupancy",
	).
		From("meetups m").
		Where("m.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var meetup models.Meetup
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&meetup.ID,
		&meetup.Name,
		&meetup.Place,
		&meetup.MeetTime,
		&meetup.Capacity,
		&meetup.CreatedAt,
		&meetup.Occupancy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &meetup, nil
}

// GetDetail retrieves a meetup with its member list, in join order
func (r *MeetupRepository) GetDetail(ctx context.Context, id int64) (*models.Meetup, error) {
	meetup, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := squirrel.Select("u.id", "u.name", "u.gender", "u.meetup_id", "u.created_at").
		From("meetup_members mm").
		Join("users u ON u.id = mm.user_id").
		Where("mm.meetup_id = ?", id).
		OrderBy("mm.joined_at ASC", "mm.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.Gender, &user.MeetupID, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		meetup.Members = append(meetup.Members, &user)
	}

	return meetup, nil
}

// GetSummaries retrieves all meetups with occupancy counts, newest first
func (r *MeetupRepository) GetSummaries(ctx context.Context) ([]*models.Meetup, error) {
	query := squirrel.Select(
		"m.id", "m.name", "m.place", "m.meet_time", "m.capacity", "m.created_at",
		"COUNT(mm.id) AS occupancy",
	).
		From("meetups m").
		LeftJoin("meetup_members mm ON mm.meetup_id = m.id").
		GroupBy("m.id").
		OrderBy("m.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var meetups []*models.Meetup
	for rows.Next() {
		var meetup models.Meetup
		err := rows.Scan(
			&meetup.ID,
			&meetup.Name,
			&meetup.Place,
			&meetup.MeetTime,
			&meetup.Capacity,
			&meetup.CreatedAt,
			&meetup.Occupancy,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		meetups = append(meetups, &meetup)
	}

	return meetups, nil
}

// CreateWithCreator inserts a meetup and admits its creator in the same
// transaction: if the creator already occupies a meetup, no meetup document
// is created at all.
func (r *MeetupRepository) CreateWithCreator(ctx context.Context, meetup *models.Meetup, creator *models.User, entry *models.ChatEntry) error {
	err := r.runTransition(ctx, func(ctx context.Context, tx pgx.Tx) error {
		insert := squirrel.Insert("meetups").
			Columns("name", "place", "meet_time", "capacity").
			Values(meetup.Name, meetup.Place, meetup.MeetTime, meetup.Capacity).
			Suffix("RETURNING id, created_at").
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&meetup.ID, &meetup.CreatedAt); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		if err := admitLocked(ctx, tx, meetup.ID, meetup.Capacity, creator); err != nil {
			return err
		}
		meetup.Occupancy = 1

		entry.MeetupID = meetup.ID
		return insertChatEntry(ctx, tx, entry)
	})
	if err != nil {
		return err
	}
	creator.MeetupID = &meetup.ID
	return nil
}

// AdmitMember joins a user to a meetup. The preconditions (meetup exists,
// user unaffiliated, occupancy below capacity) are evaluated under the meetup
// row lock, at the instant of admission. On success the user's meetup
// reference is set, the system entry is appended and the returned meetup
// carries the post-admission occupancy.
func (r *MeetupRepository) AdmitMember(ctx context.Context, meetupID int64, user *models.User, entry *models.ChatEntry) (*models.Meetup, error) {
	var meetup models.Meetup
	err := r.runTransition(ctx, func(ctx context.Context, tx pgx.Tx) error {
		occupied, err := lockMeetup(ctx, tx, meetupID, &meetup)
		if err != nil {
			return err
		}

		if err := admitLocked(ctx, tx, meetupID, meetup.Capacity, user); err != nil {
			return err
		}
		meetup.Occupancy = occupied + 1

		entry.MeetupID = meetupID
		return insertChatEntry(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	mid := meetupID
	user.MeetupID = &mid
	return &meetup, nil
}

// RemoveMember clears a user's membership. Fails with ErrNotMember when the
// user is unaffiliated; the meetup is never deleted, even at occupancy zero.
func (r *MeetupRepository) RemoveMember(ctx context.Context, user *models.User, entry *models.ChatEntry) (*models.Meetup, error) {
	var meetup models.Meetup
	err := r.runTransition(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Resolve the meetup before taking locks; lock order is always
		// meetup first, then user, same as admission.
		var current *int64
		if err := tx.QueryRow(ctx, `SELECT meetup_id FROM users WHERE id = $1`, user.ID).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("error executing query: %w", err)
		}
		if current == nil {
			return apperrors.ErrNotMember
		}
		meetupID := *current

		occupied, err := lockMeetup(ctx, tx, meetupID, &meetup)
		if err != nil {
			return err
		}

		// Re-check under the user row lock; a concurrent leave loses here.
		var locked *int64
		if err := tx.QueryRow(ctx, `SELECT meetup_id FROM users WHERE id = $1 FOR UPDATE`, user.ID).Scan(&locked); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
		if locked == nil || *locked != meetupID {
			return apperrors.ErrNotMember
		}

		if _, err := tx.Exec(ctx, `DELETE FROM meetup_members WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET meetup_id = NULL WHERE id = $1`, user.ID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
		meetup.Occupancy = occupied - 1

		entry.MeetupID = meetupID
		return insertChatEntry(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	user.MeetupID = nil
	return &meetup, nil
}

// lockMeetup takes the meetup row lock and returns the current occupancy.
// Every membership transition for a meetup goes through this lock.
func lockMeetup(ctx context.Context, tx pgx.Tx, meetupID int64, meetup *models.Meetup) (int, error) {
	err := tx.QueryRow(ctx,
		`SELECT id, name, place, meet_time, capacity, created_at FROM meetups WHERE id = $1 FOR UPDATE`,
		meetupID,
	).Scan(&meetup.ID, &meetup.Name, &meetup.Place, &meetup.MeetTime, &meetup.Capacity, &meetup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrMeetupNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	var occupied int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM meetup_members WHERE meetup_id = $1`, meetupID).Scan(&occupied)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return occupied, nil
}

// admitLocked performs the check-and-insert half of an admission. The caller
// holds the meetup row lock; capacity is re-counted here so the check and the
// insert cannot be separated by a concurrent join.
func admitLocked(ctx context.Context, tx pgx.Tx, meetupID int64, capacity int, user *models.User) error {
	var current *int64
	if err := tx.QueryRow(ctx, `SELECT meetup_id FROM users WHERE id = $1 FOR UPDATE`, user.ID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	if current != nil {
		return apperrors.ErrAlreadyMember
	}

	var occupied int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM meetup_members WHERE meetup_id = $1`, meetupID).Scan(&occupied); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if occupied >= capacity {
		return apperrors.ErrCapacityExceeded
	}

	if _, err := tx.Exec(ctx, `INSERT INTO meetup_members (meetup_id, user_id) VALUES ($1, $2)`, meetupID, user.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "meetup_members_user_id_key") {
			return apperrors.ErrAlreadyMember
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET meetup_id = $1 WHERE id = $2`, meetupID, user.ID); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// runTransition executes fn in a transaction, retrying once on a detected
// write conflict before surfacing an internal error. Precondition failures
// (apperrors sentinels) are returned as-is, never retried.
func (r *MeetupRepository) runTransition(ctx context.Context, fn db.TransactionFn) error {
	err := db.WithTransaction(ctx, r.db, fn)
	if err != nil && dberrors.IsWriteConflict(err) {
		err = db.WithTransaction(ctx, r.db, fn)
	}
	if err != nil {
		if isPreconditionError(err) {
			return err
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func isPreconditionError(err error) bool {
	return errors.Is(err, apperrors.ErrAlreadyMember) ||
		errors.Is(err, apperrors.ErrNotMember) ||
		errors.Is(err, apperrors.ErrCapacityExceeded) ||
		errors.Is(err, apperrors.ErrMeetupNotFound) ||
		errors.Is(err, apperrors.ErrUserNotFound)
}
