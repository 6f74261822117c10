package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"talent_server/core/domain"
	"talent_server/core/port/out"
)

// NotificationAdapter implements domain.NotificationRepository using PostgreSQL.
type NotificationAdapter struct {
	db *sqlx.DB
}

func NewNotificationAdapter(db *sqlx.DB) *NotificationAdapter {
	return &NotificationAdapter{db: db}
}

type notificationRow struct {
	ID          string         `db:"id"`
	RecipientID string         `db:"recipient_id"`
	Type        string         `db:"type"`
	Message     string         `db:"message"`
	EntityType  sql.NullString `db:"entity_type"`
	EntityID    sql.NullString `db:"entity_id"`
	IsRead      bool           `db:"is_read"`
	ReadAt      sql.NullTime   `db:"read_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *notificationRow) toDomain() *domain.Notification {
	n := &domain.Notification{
		ID:          r.ID,
		RecipientID: r.RecipientID,
		Type:        domain.NotificationType(r.Type),
		Message:     r.Message,
		EntityType:  r.EntityType.String,
		EntityID:    r.EntityID.String,
		IsRead:      r.IsRead,
		ReadAt:      nullTime(r.ReadAt),
		CreatedAt:   r.CreatedAt,
	}
	return n
}

func (a *NotificationAdapter) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, type, message, entity_type, entity_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())
		RETURNING id, created_at
	`
	err := a.db.QueryRowxContext(ctx, query,
		n.RecipientID,
		string(n.Type),
		n.Message,
		sql.NullString{String: n.EntityType, Valid: n.EntityType != ""},
		sql.NullString{String: n.EntityID, Valid: n.EntityID != ""},
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (a *NotificationAdapter) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var row notificationRow
	if err := a.db.GetContext(ctx, &row, `SELECT * FROM notifications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (a *NotificationAdapter) List(ctx context.Context, filter *domain.NotificationFilter) ([]*domain.Notification, int, error) {
	baseQuery := `FROM notifications WHERE recipient_id = $1`
	args := []any{filter.RecipientID}
	argIdx := 2

	if filter.Type != nil {
		baseQuery += fmt.Sprintf(` AND type = $%d`, argIdx)
		args = append(args, string(*filter.Type))
		argIdx++
	}
	if filter.IsRead != nil {
		baseQuery += fmt.Sprintf(` AND is_read = $%d`, argIdx)
		args = append(args, *filter.IsRead)
		argIdx++
	}

	var total int
	if err := a.db.GetContext(ctx, &total, `SELECT COUNT(*) `+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	selectQuery := fmt.Sprintf(`SELECT * %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, baseQuery, argIdx, argIdx+1)
	args = append(args, limit, filter.Offset)

	var rows []notificationRow
	if err := a.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]*domain.Notification, len(rows))
	for i := range rows {
		notifications[i] = rows[i].toDomain()
	}
	return notifications, total, nil
}

func (a *NotificationAdapter) MarkAsRead(ctx context.Context, recipientID, id string) error {
	return expectRow(a.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND recipient_id = $2`,
		id, recipientID))
}

func (a *NotificationAdapter) MarkAllAsRead(ctx context.Context, recipientID string) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE recipient_id = $1 AND is_read = false`,
		recipientID)
	return err
}

func (a *NotificationAdapter) Delete(ctx context.Context, recipientID, id string) error {
	return expectRow(a.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`,
		id, recipientID))
}

func (a *NotificationAdapter) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := a.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`, recipientID)
	return count, err
}

// expectRow maps zero affected rows to out.ErrNotFound.
func expectRow(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return out.ErrNotFound
	}
	return nil
}

var _ domain.NotificationRepository = (*NotificationAdapter)(nil)
