package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmeet/backend/internal/app/models"
	"github.com/campusmeet/backend/internal/pkg/helpers"
)

// ChatRepository handles database operations for meetup transcripts
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// insertChatEntry appends one transcript line using q (pool or transaction).
// A single INSERT, so concurrent appends never lose each other; the serial
// key is the causal order. Fills the entry's ID, DisplayTime and CreatedAt.
func insertChatEntry(ctx context.Context, q querier, entry *models.ChatEntry) error {
	entry.DisplayTime = helpers.FormatClock(time.Now())

	query := squirrel.Insert("chat_entries").
		Columns("meetup_id", "author_id", "author_name", "body", "is_system", "display_time").
		Values(entry.MeetupID, entry.AuthorID, entry.AuthorName, entry.Body, entry.IsSystem, entry.DisplayTime).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = q.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Append appends one entry to a meetup transcript with a server-assigned
// timestamp.
func (r *ChatRepository) Append(ctx context.Context, entry *models.ChatEntry) error {
	return insertChatEntry(ctx, r.db, entry)
}

// ListByMeetup retrieves one transcript page. With a nil cursor it returns
// the newest entries; with a cursor it returns the entries just before that
// ID, so a reader can restart and walk the whole transcript page by page.
// Entries within a page come back in causal order.
func (r *ChatRepository) ListByMeetup(ctx context.Context, meetupID int64, before *int64, limit int) ([]*models.ChatEntry, error) {
	query := squirrel.Select("id", "meetup_id", "author_id", "author_name", "body", "is_system", "display_time", "created_at").
		From("chat_entries").
		Where("meetup_id = ?", meetupID).
		OrderBy("id DESC").
		PlaceholderFormat(squirrel.Dollar)

	if before != nil {
		query = query.Where("id < ?", *before)
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var entries []*models.ChatEntry
	for rows.Next() {
		var entry models.ChatEntry
		err := rows.Scan(
			&entry.ID,
			&entry.MeetupID,
			&entry.AuthorID,
			&entry.AuthorName,
			&entry.Body,
			&entry.IsSystem,
			&entry.DisplayTime,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		entries = append(entries, &entry)
	}

	// Selected newest-first; flip back to causal order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}
