package notify

import (
	"context"
	"time"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

// Inbox is the read side of notifications, scoped per receiver.
type Inbox struct {
	repo repositories.NotificationRepository
}

func NewInbox(repo repositories.NotificationRepository) *Inbox {
	return &Inbox{repo: repo}
}

func (i *Inbox) Unread(ctx context.Context, receiver string, since time.Time) ([]*models.Notification, error) {
	return i.repo.Unread(ctx, receiver, since)
}

// History pages through every notification for receiver, newest first.
// page is 1-based; out-of-range values are clamped.
func (i *Inbox) History(ctx context.Context, receiver string, page, limit int) ([]*models.Notification, int, error) {
	page, limit = NormalizePage(page, limit)
	return i.repo.History(ctx, receiver, limit, (page-1)*limit)
}

func (i *Inbox) MarkRead(ctx context.Context, receiver, id string) (bool, error) {
	n, err := i.repo.MarkRead(ctx, receiver, id)
	return n > 0, err
}

func (i *Inbox) MarkAllRead(ctx context.Context, receiver string) (int64, error) {
	return i.repo.MarkAllRead(ctx, receiver)
}

func (i *Inbox) Delete(ctx context.Context, receiver, id string) (bool, error) {
	n, err := i.repo.Delete(ctx, receiver, id)
	return n > 0, err
}

func (i *Inbox) DeleteAll(ctx context.Context, receiver string) (int64, error) {
	return i.repo.DeleteAll(ctx, receiver)
}

func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	return page, limit
}
