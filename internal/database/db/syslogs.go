package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateSystemLogParams struct {
	Level   string
	Action  string
	UserID  *uuid.UUID
	Details []byte
}

func (q *Queries) CreateSystemLog(ctx context.Context, arg CreateSystemLogParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO system_logs (level, action, user_id, details)
		VALUES ($1, $2, $3, $4)`,
		arg.Level, arg.Action, arg.UserID, arg.Details,
	)
	return err
}

type ListSystemLogsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListSystemLogs(ctx context.Context, arg ListSystemLogsParams) ([]SystemLog, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, level, action, user_id, details, created_at
		FROM system_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []SystemLog
	for rows.Next() {
		var l SystemLog
		if err := rows.Scan(&l.ID, &l.Level, &l.Action, &l.UserID, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteOldSystemLogs removes audit rows older than cutoff.
func (q *Queries) DeleteOldSystemLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM system_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
