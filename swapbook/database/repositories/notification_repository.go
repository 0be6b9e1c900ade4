package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/swapbook/swapbook/swapbook/database/models"
)

const notificationEntity = "notification"

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Unread(ctx context.Context, receiver string, since time.Time) ([]*models.Notification, error)
	History(ctx context.Context, receiver string, limit, offset int) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, receiver, id string) (int64, error)
	MarkAllRead(ctx context.Context, receiver string) (int64, error)
	Delete(ctx context.Context, receiver, id string) (int64, error)
	DeleteAll(ctx context.Context, receiver string) (int64, error)
}

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(db bun.IDB) NotificationRepository {
	return &notificationRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}

	_, err := r.db.NewInsert().Model(n).Exec(ctx)
	return r.HandleError("create", notificationEntity, err)
}

// Unread returns unread rows for receiver created after since, oldest first.
// A zero since returns every unread row.
func (r *notificationRepository) Unread(ctx context.Context, receiver string, since time.Time) ([]*models.Notification, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var rows []*models.Notification
	q := r.db.NewSelect().
		Model(&rows).
		Where("receiver_address = ?", receiver).
		Where("is_read = ?", false)
	if !since.IsZero() {
		q = q.Where("created_at > ?", since.UTC())
	}
	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, r.HandleError("unread", notificationEntity, err)
	}
	return rows, nil
}

func (r *notificationRepository) History(ctx context.Context, receiver string, limit, offset int) ([]*models.Notification, int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var rows []*models.Notification
	total, err := r.db.NewSelect().
		Model(&rows).
		Where("receiver_address = ?", receiver).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, r.HandleError("history", notificationEntity, err)
	}
	return rows, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, receiver, id string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Where("id = ?", id).
		Where("receiver_address = ?", receiver).
		Exec(ctx)
	return r.affected("mark_read", notificationEntity, res, err)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiver string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Where("receiver_address = ?", receiver).
		Where("is_read = ?", false).
		Exec(ctx)
	return r.affected("mark_all_read", notificationEntity, res, err)
}

func (r *notificationRepository) Delete(ctx context.Context, receiver, id string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Notification)(nil)).
		Where("id = ?", id).
		Where("receiver_address = ?", receiver).
		Exec(ctx)
	return r.affected("delete", notificationEntity, res, err)
}

func (r *notificationRepository) DeleteAll(ctx context.Context, receiver string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Notification)(nil)).
		Where("receiver_address = ?", receiver).
		Exec(ctx)
	return r.affected("delete_all", notificationEntity, res, err)
}
