package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/okuznetsov/gumshoe/server/internal/events"
)

// ActivityRepository persists activity entries in SQLite.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository wraps an initialized activity database.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts an entry into the immutable log.
func (r *ActivityRepository) Append(ctx context.Context, a events.Activity) error {
	var metadataStr string
	if a.Metadata != nil {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataStr = string(raw)
	}

	query := `
		INSERT INTO activity (id, timestamp, action, room_id, user_id, message, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Timestamp, string(a.Action), a.RoomID, a.UserID, a.Message, metadataStr,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) getMany(ctx context.Context, query string, args ...any) ([]events.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []events.Activity
	for rows.Next() {
		var a events.Activity
		var action, metadataStr string
		if err := rows.Scan(&a.ID, &a.Timestamp, &action, &a.RoomID, &a.UserID, &a.Message, &metadataStr); err != nil {
			return nil, err
		}
		a.Action = events.Action(action)
		if metadataStr != "" {
			if err := json.Unmarshal([]byte(metadataStr), &a.Metadata); err != nil {
				return nil, err
			}
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// GetByRoom retrieves all persisted entries for a room, oldest first.
func (r *ActivityRepository) GetByRoom(ctx context.Context, roomID string) ([]events.Activity, error) {
	query := `SELECT id, timestamp, action, room_id, user_id, message, metadata FROM activity WHERE room_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, roomID)
}

// GetByAction retrieves all persisted entries of one action type.
func (r *ActivityRepository) GetByAction(ctx context.Context, action events.Action) ([]events.Activity, error) {
	query := `SELECT id, timestamp, action, room_id, user_id, message, metadata FROM activity WHERE action = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, string(action))
}
