package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/swapbook/swapbook/swapbook/database/models"
)

const swapEntity = "swap"

// SwapFilter narrows Find and Count. Zero fields are ignored.
type SwapFilter struct {
	// Party matches rows where the address is init or accept.
	Party       string
	InitAddress string
	Mode        models.SwapMode
	Statuses    []models.SwapStatus
	NotStatuses []models.SwapStatus
	OpenTradeID int64
	// OriginalsOnly keeps open-market originals: no group id and no acceptor.
	OriginalsOnly bool
	Limit         int
	Offset        int
}

// Settlement carries the fields an acceptor writes on completion.
type Settlement struct {
	// AcceptAddress fills an empty acceptor on private swaps; ignored otherwise.
	AcceptAddress string
	AcceptSign    string
	Tx            string
	Notes         string
	Timestamp     string
}

type SwapRepository interface {
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id int64) (*models.Swap, error)
	GetByTradeID(ctx context.Context, tradeID string) (*models.Swap, error)
	LockByID(ctx context.Context, id int64) (*models.Swap, error)
	Find(ctx context.Context, filter SwapFilter) ([]*models.Swap, error)
	Count(ctx context.Context, filter SwapFilter) (int, error)
	GroupAnchors(ctx context.Context, groupID int64) ([]*models.Swap, error)
	PendingOffers(ctx context.Context, groupID, excludeID int64) ([]*models.Swap, error)
	CountPendingOffers(ctx context.Context, groupIDs []int64) (map[int64]int, error)
	CountCompletedNegotiations(ctx context.Context, address string) (int, error)

	CompletePending(ctx context.Context, id int64, s Settlement) (int64, error)
	DeclinePendingOffers(ctx context.Context, groupID, excludeID int64) (int64, error)
	CloseOriginal(ctx context.Context, groupID int64, status models.SwapStatus) (int64, error)
	DeclinePending(ctx context.Context, id int64, acceptSign string) (int64, error)
	CancelPending(ctx context.Context, id int64) (int64, error)
}

type swapRepository struct {
	BaseRepository
}

func NewSwapRepository(db bun.IDB) SwapRepository {
	return &swapRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *swapRepository) Create(ctx context.Context, swap *models.Swap) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ts := now()
	swap.Status = models.SwapPending
	swap.CreatedAt = ts
	swap.UpdatedAt = ts

	_, err := r.db.NewInsert().Model(swap).Exec(ctx)
	return r.HandleError("create", swapEntity, err)
}

func (r *swapRepository) GetByID(ctx context.Context, id int64) (*models.Swap, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	swap := new(models.Swap)
	err := r.db.NewSelect().Model(swap).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", swapEntity, id, err)
	}
	return swap, nil
}

func (r *swapRepository) GetByTradeID(ctx context.Context, tradeID string) (*models.Swap, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	swap := new(models.Swap)
	err := r.db.NewSelect().
		Model(swap).
		Where("trade_id = ?", tradeID).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get_by_trade_id", swapEntity, tradeID, err)
	}
	return swap, nil
}

func (r *swapRepository) LockByID(ctx context.Context, id int64) (*models.Swap, error) {
	swap := new(models.Swap)
	err := r.forUpdate(r.db.NewSelect().Model(swap).Where("id = ?", id)).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("lock", swapEntity, id, err)
	}
	return swap, nil
}

func (r *swapRepository) applyFilter(q *bun.SelectQuery, f SwapFilter) *bun.SelectQuery {
	if f.Party != "" {
		q = q.Where("(init_address = ? OR accept_address = ?)", f.Party, f.Party)
	}
	if f.InitAddress != "" {
		q = q.Where("init_address = ?", f.InitAddress)
	}
	if f.Mode != 0 {
		q = q.Where("swap_mode = ?", f.Mode)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(f.Statuses))
	}
	if len(f.NotStatuses) > 0 {
		q = q.Where("status NOT IN (?)", bun.In(f.NotStatuses))
	}
	if f.OpenTradeID != 0 {
		q = q.Where("open_trade_id = ?", f.OpenTradeID)
	}
	if f.OriginalsOnly {
		q = q.Where("open_trade_id IS NULL").Where("accept_address IS NULL")
	}
	return q
}

func (r *swapRepository) Find(ctx context.Context, f SwapFilter) ([]*models.Swap, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var swaps []*models.Swap
	q := r.applyFilter(r.db.NewSelect().Model(&swaps), f).
		Order("created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, r.HandleError("find", swapEntity, err)
	}
	return swaps, nil
}

func (r *swapRepository) Count(ctx context.Context, f SwapFilter) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.applyFilter(r.db.NewSelect().Model((*models.Swap)(nil)), f).Count(ctx)
	return count, r.HandleError("count", swapEntity, err)
}

// GroupAnchors returns every row of the group with no acceptor. A healthy
// group has exactly one: the original whose id is the group id.
func (r *swapRepository) GroupAnchors(ctx context.Context, groupID int64) ([]*models.Swap, error) {
	var swaps []*models.Swap
	err := r.db.NewSelect().
		Model(&swaps).
		Where("(id = ? OR open_trade_id = ?)", groupID, groupID).
		Where("accept_address IS NULL").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("group_anchors", swapEntity, err)
	}
	return swaps, nil
}

// PendingOffers locks the pending offers of a group. Rows that leave PENDING
// while the lock is awaited are dropped from the result.
func (r *swapRepository) PendingOffers(ctx context.Context, groupID, excludeID int64) ([]*models.Swap, error) {
	var swaps []*models.Swap
	err := r.forUpdate(r.db.NewSelect().
		Model(&swaps).
		Where("open_trade_id = ?", groupID).
		Where("id <> ?", excludeID).
		Where("status = ?", models.SwapPending).
		Where("accept_address IS NOT NULL").
		Order("id ASC")).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("pending_offers", swapEntity, err)
	}
	return swaps, nil
}

func (r *swapRepository) CountPendingOffers(ctx context.Context, groupIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var rows []struct {
		OpenTradeID int64 `bun:"open_trade_id"`
		Offers      int   `bun:"offers"`
	}
	err := r.db.NewSelect().
		Model((*models.Swap)(nil)).
		Column("open_trade_id").
		ColumnExpr("COUNT(*) AS offers").
		Where("open_trade_id IN (?)", bun.In(groupIDs)).
		Where("status = ?", models.SwapPending).
		Where("accept_address IS NOT NULL").
		Group("open_trade_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, r.HandleError("count_pending_offers", swapEntity, err)
	}
	for _, row := range rows {
		counts[row.OpenTradeID] = row.Offers
	}
	return counts, nil
}

// CountCompletedNegotiations counts completed rows the address took part in
// as either side. Closed open-market originals have no acceptor and are skipped.
func (r *swapRepository) CountCompletedNegotiations(ctx context.Context, address string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Swap)(nil)).
		Where("(init_address = ? OR accept_address = ?)", address, address).
		Where("status = ?", models.SwapCompleted).
		Where("accept_address IS NOT NULL").
		Count(ctx)
	return count, r.HandleError("count_completed", swapEntity, err)
}

func (r *swapRepository) CompletePending(ctx context.Context, id int64, s Settlement) (int64, error) {
	q := r.db.NewUpdate().
		Model((*models.Swap)(nil)).
		Set("status = ?", models.SwapCompleted).
		Set("accept_sign = ?", s.AcceptSign).
		Set("tx = ?", s.Tx).
		Set("notes = ?", s.Notes).
		Set(`"timestamp" = ?`, s.Timestamp).
		Set("updated_at = ?", now())
	if s.AcceptAddress != "" {
		q = q.Set("accept_address = COALESCE(accept_address, ?)", s.AcceptAddress)
	}
	res, err := q.
		Where("id = ?", id).
		Where("status = ?", models.SwapPending).
		Exec(ctx)
	return r.affected("complete", swapEntity, res, err)
}

func (r *swapRepository) DeclinePendingOffers(ctx context.Context, groupID, excludeID int64) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Swap)(nil)).
		Set("status = ?", models.SwapDeclined).
		Set("updated_at = ?", now()).
		Where("open_trade_id = ?", groupID).
		Where("id <> ?", excludeID).
		Where("status = ?", models.SwapPending).
		Where("accept_address IS NOT NULL").
		Exec(ctx)
	return r.affected("decline_offers", swapEntity, res, err)
}

func (r *swapRepository) CloseOriginal(ctx context.Context, groupID int64, status models.SwapStatus) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Swap)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now()).
		Where("id = ?", groupID).
		Where("status = ?", models.SwapPending).
		Where("accept_address IS NULL").
		Exec(ctx)
	return r.affected("close_original", swapEntity, res, err)
}

func (r *swapRepository) DeclinePending(ctx context.Context, id int64, acceptSign string) (int64, error) {
	q := r.db.NewUpdate().
		Model((*models.Swap)(nil)).
		Set("status = ?", models.SwapDeclined).
		Set("updated_at = ?", now())
	if acceptSign != "" {
		q = q.Set("accept_sign = ?", acceptSign)
	}
	res, err := q.
		Where("id = ?", id).
		Where("status = ?", models.SwapPending).
		Exec(ctx)
	return r.affected("decline", swapEntity, res, err)
}

func (r *swapRepository) CancelPending(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Swap)(nil)).
		Set("status = ?", models.SwapCancelled).
		Set("updated_at = ?", now()).
		Where("id = ?", id).
		Where("status = ?", models.SwapPending).
		Exec(ctx)
	return r.affected("cancel", swapEntity, res, err)
}
