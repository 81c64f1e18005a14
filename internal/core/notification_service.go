package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// NotificationService records stock-status alerts and exposes them to the
// external notification channel. Creation happens inside the same
// transaction as the stock change; delivery is someone else's problem.
type NotificationService struct {
	pool *pgxpool.Pool
}

func NewNotificationService(pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{pool: pool}
}

// recordStatusChangeTx creates a low/out-of-stock notification for the item
// unless an unread one of the same type already exists. Transitions back to
// in_stock create nothing and do not touch older notifications; marking
// read is an explicit operation owned by the notification UI.
// Returns nil when no notification is due or a duplicate was suppressed.
func (n *NotificationService) recordStatusChangeTx(ctx context.Context, tx pgx.Tx, itemCode, itemName string, currentStock decimal.Decimal, status Status) (*Notification, error) {
	var notifType NotificationType
	var message string
	switch status {
	case StatusLowStock:
		notifType = NotificationLowStock
		message = fmt.Sprintf("Low stock alert for item %s (current: %s)", itemName, currentStock)
	case StatusOutOfStock:
		notifType = NotificationOutOfStock
		message = fmt.Sprintf("Out of stock alert for item %s", itemName)
	default:
		return nil, nil
	}

	notif := Notification{Type: notifType, Message: message, ItemCode: itemCode}
	err := tx.QueryRow(ctx, `
		INSERT INTO notifications (type, message, item_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_code, type) WHERE NOT read DO NOTHING
		RETURNING id, created_at
	`, string(notifType), message, itemCode).Scan(&notif.ID, &notif.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// An unread notification of this type already exists.
			return nil, nil
		}
		return nil, storagef(err, "failed to record notification for item %s", itemCode)
	}
	return &notif, nil
}

// List returns notifications newest first. When unreadOnly is set, read
// notifications are filtered out.
func (n *NotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	query := `
		SELECT id, type, message, item_code, read, created_at
		FROM notifications`
	if unreadOnly {
		query += ` WHERE NOT read`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := n.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, storagef(err, "failed to query notifications")
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var notif Notification
		var notifType string
		if err := rows.Scan(&notif.ID, &notifType, &notif.Message, &notif.ItemCode, &notif.Read, &notif.CreatedAt); err != nil {
			return nil, storagef(err, "failed to scan notification")
		}
		notif.Type = NotificationType(notifType)
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "error iterating notifications")
	}
	return notifications, nil
}

// MarkRead marks one notification as read.
func (n *NotificationService) MarkRead(ctx context.Context, id int) error {
	tag, err := n.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return storagef(err, "failed to mark notification %d read", id)
	}
	if tag.RowsAffected() == 0 {
		return Errorf(KindNotFound, "notification %d not found", id)
	}
	return nil
}
