package sqlite

import (
	"context"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

func (d *DB) CreateNotification(ctx context.Context, userID, taskID int64, message string) (int64, error) {
	res, err := d.SQL.ExecContext(ctx, `
        INSERT INTO notifications (user_id, task_id, message, is_read, created_at)
        VALUES (?, ?, ?, 0, ?)`, userID, taskID, message, Now())
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (d *DB) ListUnreadNotifications(ctx context.Context, userID int64) ([]*models.Notification, error) {
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT id, user_id, task_id, message, is_read, created_at
        FROM notifications
        WHERE user_id=? AND is_read=0
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (d *DB) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := d.SQL.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
