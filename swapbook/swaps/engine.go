package swaps

import (
	"context"
	"log/slog"

	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
	"github.com/swapbook/swapbook/swapbook/logger"
	"github.com/swapbook/swapbook/swapbook/notify"
)

//go:generate mockgen -source=engine.go -destination=mock/engine.go -package=mock

// Notifier receives post-commit notices.
type Notifier interface {
	Notify(ctx context.Context, notice notify.Notice) error
}

// TagUpdater derives user classification tags. It runs on the transaction's
// repositories.
type TagUpdater interface {
	OnFirstTradeCompleted(ctx context.Context, repos *repositories.Repos, parties ...string) (int, error)
	OnFirstSubnameMinted(ctx context.Context, repos *repositories.Repos, party, subname string) (int, error)
}

// Result is what a transition hands back to the caller.
type Result struct {
	Message  string         `json:"-"`
	Swap     *models.Swap   `json:"swap,omitempty"`
	Original *models.Swap   `json:"original,omitempty"`
	Declined []*models.Swap `json:"declined,omitempty"`
}

// Engine is the swap lifecycle state machine. Every transition runs as one
// store transaction; notifications are queued and dispatched after commit.
type Engine struct {
	store      *repositories.Store
	notifier   Notifier
	tags       TagUpdater
	dispatcher *notify.Dispatcher
}

func NewEngine(store *repositories.Store, notifier Notifier, tags TagUpdater, dispatcher *notify.Dispatcher) *Engine {
	return &Engine{
		store:      store,
		notifier:   notifier,
		tags:       tags,
		dispatcher: dispatcher,
	}
}

// transition runs fn in a transaction and, on commit, dispatches the notices
// fn collected.
func (e *Engine) transition(ctx context.Context, op string, fn func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error)) (*Result, error) {
	out := &outbox{}
	var result *Result

	err := e.store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repos) error {
		var err error
		result, err = fn(ctx, repos, out)
		return err
	})
	if err != nil {
		slog.Warn("Swap transition aborted",
			slog.String("type", "swap"),
			slog.String("op", op),
			slog.Any("error", err),
		)
		return nil, err
	}

	if result.Swap != nil {
		logger.LogSwap(op, result.Swap.ID, string(result.Swap.Role()), out.affected)
	}
	e.dispatcher.Run(ctx, op, out.hooks(e.notifier)...)
	return result, nil
}

// outbox collects notices and the affected-row tally inside a transaction.
type outbox struct {
	notices  []notify.Notice
	affected int64
}

func (o *outbox) add(n notify.Notice) {
	o.notices = append(o.notices, n)
}

func (o *outbox) hooks(notifier Notifier) []notify.Hook {
	hooks := make([]notify.Hook, 0, len(o.notices))
	for _, n := range o.notices {
		n := n
		hooks = append(hooks, func(ctx context.Context) error {
			return notifier.Notify(ctx, n)
		})
	}
	return hooks
}

// mustUpdate treats a zero-row conditional update as a lost race.
func (o *outbox) mustUpdate(op string, n int64, err error, what string) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(op, ErrInvalidState, "%s is no longer pending", what)
	}
	o.affected += n
	return nil
}

// Create inserts a new primary offer, open or private.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	op := MsgCreatePrivateSwap
	if req.Mode == models.SwapModeOpen {
		op = MsgCreateOpenSwap
	}
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		swap := &models.Swap{
			SwapMode:        req.Mode,
			OfferType:       models.OfferTypePrimary,
			InitAddress:     req.InitAddress,
			InitSign:        req.InitSign,
			Metadata:        req.Metadata,
			SwapPreferences: req.SwapPreferences,
			TradingChain:    req.TradingChain,
		}
		if req.Mode == models.SwapModePrivate {
			swap.AcceptAddress = req.AcceptAddress
			swap.TradeID = req.TradeID
		}

		if err := repos.Swaps.Create(ctx, swap); err != nil {
			return nil, err
		}
		out.affected++
		if err := ensureUsers(ctx, repos, swap.InitAddress, swap.AcceptAddress); err != nil {
			return nil, err
		}

		if swap.SwapMode == models.SwapModePrivate && swap.AcceptAddress != "" {
			out.add(notify.NoticeFor(swap, swap.InitAddress, swap.AcceptAddress, models.NotificationReceived))
		}
		return &Result{Message: op, Swap: swap}, nil
	})
}

func (e *Engine) CreatePrivate(ctx context.Context, req CreateRequest) (*Result, error) {
	req.Mode = models.SwapModePrivate
	return e.Create(ctx, req)
}

func (e *Engine) CreateOpen(ctx context.Context, req CreateRequest) (*Result, error) {
	req.Mode = models.SwapModeOpen
	return e.Create(ctx, req)
}

// Propose inserts an offer against a pending open-market original. The
// original is locked so proposals serialize with accepts and cancels.
func (e *Engine) Propose(ctx context.Context, req ProposeRequest) (*Result, error) {
	const op = MsgProposeOpenSwap
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		target, err := repos.Swaps.LockByID(ctx, req.OpenTradeID)
		if err != nil {
			return nil, lookupError(op, err)
		}
		if err := requireOpenOriginal(op, target); err != nil {
			return nil, err
		}
		if req.InitAddress != target.InitAddress {
			return nil, newError(op, ErrValidation, "init_address does not own open swap %d", target.ID)
		}

		offer := &models.Swap{
			TradeID:       req.TradeID,
			OpenTradeID:   target.ID,
			SwapMode:      models.SwapModeOpen,
			OfferType:     models.OfferTypePrimary,
			InitAddress:   target.InitAddress,
			AcceptAddress: req.AcceptAddress,
			InitSign:      req.InitSign,
			Metadata:      req.Metadata,
			TradingChain:  firstNonEmpty(req.TradingChain, target.TradingChain),
		}
		if err := repos.Swaps.Create(ctx, offer); err != nil {
			return nil, err
		}
		out.affected++
		if err := ensureUsers(ctx, repos, offer.AcceptAddress); err != nil {
			return nil, err
		}

		out.add(notify.NoticeFor(offer, offer.AcceptAddress, target.InitAddress, models.NotificationReceived))
		return &Result{Message: op, Swap: offer, Original: target}, nil
	})
}

// Counter supersedes a pending negotiation row with a counter-offer from one
// of its parties to the other.
func (e *Engine) Counter(ctx context.Context, req CounterRequest) (*Result, error) {
	const op = MsgCounterSwapOffer
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		target, _, err := lockNegotiation(ctx, op, repos, req.ID)
		if err != nil {
			return nil, err
		}
		if !target.IsParty(req.Address) {
			return nil, newError(op, ErrValidation, "%s is not a party of swap %d", req.Address, target.ID)
		}
		other := target.Counterparty(req.Address)
		if other == "" {
			return nil, newError(op, ErrValidation, "swap %d has no counterparty to counter", target.ID)
		}

		n, err := repos.Swaps.DeclinePending(ctx, target.ID, "")
		if err := out.mustUpdate(op, n, err, "swap"); err != nil {
			return nil, err
		}
		target.Status = models.SwapDeclined

		counter := &models.Swap{
			TradeID:         firstNonEmpty(req.TradeID, target.TradeID),
			OpenTradeID:     target.OpenTradeID,
			SwapMode:        target.SwapMode,
			OfferType:       models.OfferTypeCounter,
			InitAddress:     req.Address,
			AcceptAddress:   other,
			InitSign:        req.Sign,
			Metadata:        req.Metadata,
			SwapPreferences: target.SwapPreferences,
			TradingChain:    firstNonEmpty(req.TradingChain, target.TradingChain),
		}
		if err := repos.Swaps.Create(ctx, counter); err != nil {
			return nil, err
		}
		out.affected++
		if err := ensureUsers(ctx, repos, counter.InitAddress, counter.AcceptAddress); err != nil {
			return nil, err
		}

		out.add(notify.NoticeFor(counter, counter.InitAddress, counter.AcceptAddress, models.NotificationReceived))
		return &Result{Message: op, Swap: counter, Declined: []*models.Swap{target}}, nil
	})
}

// Accept completes one offer. For a grouped offer, every rival pending offer
// is declined and the original is closed as completed, all in one transaction.
func (e *Engine) Accept(ctx context.Context, req AcceptRequest) (*Result, error) {
	op := MsgAcceptPrivateSwap
	if err := req.validate(op); err != nil {
		return nil, err
	}
	// swap_mode never changes, so an unlocked read is enough to name the op
	if peek, err := e.store.Swaps.GetByID(ctx, req.ID); err == nil && peek.SwapMode == models.SwapModeOpen {
		op = MsgAcceptOpenSwap
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		row, original, err := lockNegotiation(ctx, op, repos, req.ID)
		if err != nil {
			return nil, err
		}

		settlement := repositories.Settlement{
			AcceptSign: req.AcceptSign,
			Tx:         req.Tx,
			Notes:      req.Notes,
			Timestamp:  req.Timestamp,
		}
		switch responder := respondingParty(row); {
		case responder == "":
			// private swap offered to anyone: the first acceptor becomes the counterparty
			if req.AcceptAddress == row.InitAddress {
				return nil, newError(op, ErrValidation, "cannot accept your own swap")
			}
			settlement.AcceptAddress = req.AcceptAddress
			row.AcceptAddress = req.AcceptAddress
			if err := ensureUsers(ctx, repos, req.AcceptAddress); err != nil {
				return nil, err
			}
		case req.AcceptAddress != responder:
			return nil, newError(op, ErrValidation, "swap %d can only be accepted by %s", row.ID, responder)
		}

		n, err := repos.Swaps.CompletePending(ctx, row.ID, settlement)
		if err := out.mustUpdate(op, n, err, "swap"); err != nil {
			return nil, err
		}
		row.Status = models.SwapCompleted
		row.AcceptSign, row.Tx, row.Notes, row.Timestamp = req.AcceptSign, req.Tx, req.Notes, req.Timestamp

		result := &Result{Message: op, Swap: row}
		if original != nil {
			declined, err := declineRivals(ctx, op, repos, out, original, row.ID)
			if err != nil {
				return nil, err
			}
			result.Declined = declined

			n, err = repos.Swaps.CloseOriginal(ctx, original.ID, models.SwapCompleted)
			if err := out.mustUpdate(op, n, err, "open swap"); err != nil {
				return nil, err
			}
			original.Status = models.SwapCompleted
			result.Original = original
		}

		if _, err := e.tags.OnFirstTradeCompleted(ctx, repos, row.InitAddress, row.AcceptAddress); err != nil {
			return nil, err
		}

		out.add(notify.NoticeFor(row, row.AcceptAddress, row.InitAddress, models.NotificationCompleted))
		out.add(notify.NoticeFor(row, row.InitAddress, row.AcceptAddress, models.NotificationCompleted))
		return result, nil
	})
}

// Reject declines a single pending offer and records the rejector's signature.
func (e *Engine) Reject(ctx context.Context, req RejectRequest) (*Result, error) {
	const op = MsgRejectedSwap
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		row, err := repos.Swaps.LockByID(ctx, req.ID)
		if err != nil {
			return nil, lookupError(op, err)
		}
		if err := requireNegotiable(op, row); err != nil {
			return nil, err
		}

		n, err := repos.Swaps.DeclinePending(ctx, row.ID, req.SignMessage)
		if err := out.mustUpdate(op, n, err, "swap"); err != nil {
			return nil, err
		}
		row.Status = models.SwapDeclined
		row.AcceptSign = req.SignMessage

		out.add(notify.NoticeFor(row, row.AcceptAddress, row.InitAddress, rejectionStatus(row)))
		return &Result{Message: op, Swap: row}, nil
	})
}

// CancelOpen withdraws an open-market original and declines its pending offers.
func (e *Engine) CancelOpen(ctx context.Context, req CancelOpenRequest) (*Result, error) {
	return e.cancelOpen(ctx, MsgCancelOpenSwap, req)
}

// CloseOpenSwapOffers is CancelOpen under its own message tag.
func (e *Engine) CloseOpenSwapOffers(ctx context.Context, req CancelOpenRequest) (*Result, error) {
	return e.cancelOpen(ctx, MsgCloseOpenSwapOffers, req)
}

func (e *Engine) cancelOpen(ctx context.Context, op string, req CancelOpenRequest) (*Result, error) {
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		original, err := repos.Swaps.LockByID(ctx, req.OpenTradeID)
		if err != nil {
			return nil, lookupError(op, err)
		}
		if err := requireOpenOriginal(op, original); err != nil {
			return nil, err
		}
		if err := checkGroupAnchor(ctx, op, repos, original.ID); err != nil {
			return nil, err
		}

		n, err := repos.Swaps.CloseOriginal(ctx, original.ID, models.SwapCancelled)
		if err := out.mustUpdate(op, n, err, "open swap"); err != nil {
			return nil, err
		}
		original.Status = models.SwapCancelled

		declined, err := declineRivals(ctx, op, repos, out, original, 0)
		if err != nil {
			return nil, err
		}
		for _, sibling := range declined {
			out.add(notify.NoticeFor(sibling, original.InitAddress, sibling.Counterparty(original.InitAddress), models.NotificationCancelled))
		}
		return &Result{Message: op, Swap: original, Declined: declined}, nil
	})
}

// CancelPrivate withdraws a pending private swap identified by trade id.
func (e *Engine) CancelPrivate(ctx context.Context, req CancelPrivateRequest) (*Result, error) {
	const op = MsgCancelPrivateSwap
	if err := req.validate(op); err != nil {
		return nil, err
	}

	return e.transition(ctx, op, func(ctx context.Context, repos *repositories.Repos, out *outbox) (*Result, error) {
		found, err := repos.Swaps.GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return nil, lookupError(op, err)
		}
		row, err := repos.Swaps.LockByID(ctx, found.ID)
		if err != nil {
			return nil, lookupError(op, err)
		}
		if err := requireNegotiable(op, row); err != nil {
			return nil, err
		}
		if row.SwapMode != models.SwapModePrivate {
			return nil, newError(op, ErrInvalidState, "swap %d is not a private swap", row.ID)
		}

		n, err := repos.Swaps.CancelPending(ctx, row.ID)
		if err := out.mustUpdate(op, n, err, "swap"); err != nil {
			return nil, err
		}
		row.Status = models.SwapCancelled

		out.add(notify.NoticeFor(row, row.InitAddress, row.AcceptAddress, models.NotificationCancelled))
		return &Result{Message: op, Swap: row}, nil
	})
}

// RecordSubname stores a freshly minted subname and updates the party's tags.
func (e *Engine) RecordSubname(ctx context.Context, address, subname string) (int, error) {
	const op = MsgSubnameMinted
	if address == "" || subname == "" {
		return 0, newError(op, ErrValidation, "address and subname are required")
	}

	var mutations int
	err := e.store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repos) error {
		var err error
		mutations, err = e.tags.OnFirstSubnameMinted(ctx, repos, address, subname)
		return err
	})
	return mutations, err
}

// lockNegotiation loads a negotiable row for update. For grouped rows the
// original is verified and locked first, then the row itself.
func lockNegotiation(ctx context.Context, op string, repos *repositories.Repos, id int64) (*models.Swap, *models.Swap, error) {
	row, err := repos.Swaps.GetByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(op, err)
	}
	if err := requireRole(op, row); err != nil {
		return nil, nil, err
	}

	var original *models.Swap
	if row.OpenTradeID != 0 {
		if err := checkGroupAnchor(ctx, op, repos, row.OpenTradeID); err != nil {
			return nil, nil, err
		}
		original, err = repos.Swaps.LockByID(ctx, row.OpenTradeID)
		if err != nil {
			return nil, nil, lookupError(op, err)
		}
		if original.Status != models.SwapPending {
			return nil, nil, newError(op, ErrInvalidState, "open swap %d is %s", original.ID, original.Status)
		}
	}

	row, err = repos.Swaps.LockByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(op, err)
	}
	if err := requireNegotiable(op, row); err != nil {
		return nil, nil, err
	}
	return row, original, nil
}

// checkGroupAnchor demands exactly one acceptor-less row in the group and
// that it is the row whose id is the group id.
func checkGroupAnchor(ctx context.Context, op string, repos *repositories.Repos, groupID int64) error {
	anchors, err := repos.Swaps.GroupAnchors(ctx, groupID)
	if err != nil {
		return err
	}
	if len(anchors) != 1 || anchors[0].ID != groupID {
		return newError(op, ErrIntegrity, "group %d has %d original candidates", groupID, len(anchors))
	}
	if anchors[0].Role() != models.RoleOpenOriginal {
		return newError(op, ErrIntegrity, "group %d original has role %s", groupID, anchors[0].Role())
	}
	return nil
}

// declineRivals declines every pending offer in the original's group except
// keepID and queues the sibling notifications for accept paths.
func declineRivals(ctx context.Context, op string, repos *repositories.Repos, out *outbox, original *models.Swap, keepID int64) ([]*models.Swap, error) {
	rivals, err := repos.Swaps.PendingOffers(ctx, original.ID, keepID)
	if err != nil {
		return nil, err
	}
	if len(rivals) == 0 {
		return nil, nil
	}

	for _, rival := range rivals {
		if rival.Role() == models.RoleInvalid {
			return nil, newError(op, ErrIntegrity, "swap %d in group %d has an invalid shape", rival.ID, original.ID)
		}
	}

	n, err := repos.Swaps.DeclinePendingOffers(ctx, original.ID, keepID)
	if err != nil {
		return nil, err
	}
	if n != int64(len(rivals)) {
		return nil, newError(op, ErrInvalidState, "group %d changed while declining offers", original.ID)
	}
	out.affected += n

	for _, rival := range rivals {
		rival.Status = models.SwapDeclined
		if keepID != 0 {
			out.add(notify.NoticeFor(rival, original.InitAddress, rival.Counterparty(original.InitAddress), rejectionStatus(rival)))
		}
	}
	return rivals, nil
}

// respondingParty is the address allowed to accept a negotiation row. Open
// offers are answered by the open swap owner; every other row by its
// accept_address, which is empty for a private swap offered to anyone.
func respondingParty(row *models.Swap) string {
	if row.Role() == models.RoleOpenOffer {
		return row.InitAddress
	}
	return row.AcceptAddress
}

func requireRole(op string, row *models.Swap) error {
	if row.Role() == models.RoleInvalid {
		return newError(op, ErrIntegrity, "swap %d has an invalid shape", row.ID)
	}
	return nil
}

func requireNegotiable(op string, row *models.Swap) error {
	if err := requireRole(op, row); err != nil {
		return err
	}
	if !row.Role().Negotiable() {
		return newError(op, ErrInvalidState, "swap %d is an open-market original", row.ID)
	}
	if row.Status != models.SwapPending {
		return newError(op, ErrInvalidState, "swap %d is %s", row.ID, row.Status)
	}
	return nil
}

func requireOpenOriginal(op string, row *models.Swap) error {
	if err := requireRole(op, row); err != nil {
		return err
	}
	if row.Role() != models.RoleOpenOriginal {
		return newError(op, ErrInvalidState, "swap %d is not an open-market original", row.ID)
	}
	if row.Status != models.SwapPending {
		return newError(op, ErrInvalidState, "open swap %d is %s", row.ID, row.Status)
	}
	return nil
}

func rejectionStatus(row *models.Swap) models.NotificationStatus {
	if row.OfferType == models.OfferTypeCounter {
		return models.NotificationCounterRejected
	}
	return models.NotificationRejected
}

func ensureUsers(ctx context.Context, repos *repositories.Repos, addresses ...string) error {
	for _, address := range addresses {
		if err := repos.Users.Ensure(ctx, address); err != nil {
			return err
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
