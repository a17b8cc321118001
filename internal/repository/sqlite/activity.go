package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-phoenix/internal/model"
	"github.com/sakif/project-phoenix/internal/repository"
)

// compile-time check that *DB implements repository.ActivityRepository
var _ repository.ActivityRepository = (*DB)(nil)

// CreateActivity inserts a feed entry. Callers treat failures as best-effort:
// the import or squad operation that triggered the entry has already
// committed.
func (db *DB) CreateActivity(ctx context.Context, activity *model.Activity) error {
	activity.ID = xid.New().String()
	activity.CreatedAt = time.Now()

	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("sqlite: encoding activity metadata: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO activity_feed (id, user_id, repo_id, activity_type, title,
		                            description, metadata, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.UserID,
		activity.RepoID,
		activity.ActivityType,
		activity.Title,
		activity.Description,
		string(encoded),
		activity.IsPublic,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating activity entry: %w", err)
	}
	return nil
}
