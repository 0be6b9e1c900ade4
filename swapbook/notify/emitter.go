package notify

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

// Notice is one party-facing event produced by a swap transition.
type Notice struct {
	Receiver    string
	Originator  string
	SwapID      int64
	TradeID     string
	OpenTradeID int64
	Mode        models.SwapMode
	Status      models.NotificationStatus
}

// NoticeFor builds a notice about swap from originator to receiver.
func NoticeFor(swap *models.Swap, from, to string, status models.NotificationStatus) Notice {
	return Notice{
		Receiver:    to,
		Originator:  from,
		SwapID:      swap.ID,
		TradeID:     swap.TradeID,
		OpenTradeID: swap.OpenTradeID,
		Mode:        swap.SwapMode,
		Status:      status,
	}
}

// Sink mirrors a stored notification to an external channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, n *models.Notification) error
}

type Emitter struct {
	repo  repositories.NotificationRepository
	sinks []Sink
}

func NewEmitter(repo repositories.NotificationRepository, sinks ...Sink) *Emitter {
	return &Emitter{repo: repo, sinks: sinks}
}

// Notify stores the notice and mirrors it to every sink. Only the store write
// can fail the call; sink failures are logged.
func (e *Emitter) Notify(ctx context.Context, notice Notice) error {
	if notice.Receiver == "" {
		slog.Debug("Skipping notification without receiver",
			slog.String("type", "notify"),
			slog.Int64("swap_id", notice.SwapID),
			slog.String("status", notice.Status.String()),
		)
		return nil
	}

	n := &models.Notification{
		ReceiverAddress:   notice.Receiver,
		OriginatorAddress: notice.Originator,
		SwapID:            notice.SwapID,
		TradeID:           notice.TradeID,
		OpenTradeID:       notice.OpenTradeID,
		SwapMode:          notice.Mode,
		Status:            notice.Status,
	}
	if err := e.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	e.mirror(ctx, n)
	return nil
}

func (e *Emitter) mirror(ctx context.Context, n *models.Notification) {
	if len(e.sinks) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.MaxConcurrentSinks)
	for _, sink := range e.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Send(gctx, n); err != nil {
				slog.Warn("Notification mirror failed",
					slog.String("type", "notify"),
					slog.String("sink", sink.Name()),
					slog.String("notification_id", n.ID),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
