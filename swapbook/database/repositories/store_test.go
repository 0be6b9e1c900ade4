package repositories_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

func setupTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.InitializeSchema(context.Background()))
	return repositories.NewStore(db.BunDB())
}

func createSwap(t *testing.T, store *repositories.Store, swap *models.Swap) *models.Swap {
	t.Helper()
	require.NoError(t, store.Swaps.Create(context.Background(), swap))
	require.NotZero(t, swap.ID)
	return swap
}

func openOriginal(init string) *models.Swap {
	return &models.Swap{
		SwapMode:    models.SwapModeOpen,
		OfferType:   models.OfferTypePrimary,
		InitAddress: init,
		InitSign:    "sig-" + init,
		Metadata:    `{"init":{"tokens":[1]}}`,
	}
}

func openOffer(groupID int64, init, accept string) *models.Swap {
	return &models.Swap{
		SwapMode:      models.SwapModeOpen,
		OfferType:     models.OfferTypePrimary,
		OpenTradeID:   groupID,
		InitAddress:   init,
		AcceptAddress: accept,
	}
}

func TestSwapRepository_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	assert.Equal(t, models.SwapPending, orig.Status)

	got, err := store.Swaps.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xA", got.InitAddress)
	assert.Empty(t, got.AcceptAddress)
	assert.Zero(t, got.OpenTradeID)
	assert.Equal(t, models.RoleOpenOriginal, got.Role())

	_, err = store.Swaps.GetByID(ctx, 9999)
	assert.True(t, repositories.IsNotFound(err))
}

func TestSwapRepository_GetByTradeID(t *testing.T) {
	store := setupTestStore(t)

	createSwap(t, store, &models.Swap{
		TradeID:       "T1",
		SwapMode:      models.SwapModePrivate,
		OfferType:     models.OfferTypePrimary,
		InitAddress:   "0xA",
		AcceptAddress: "0xB",
	})

	got, err := store.Swaps.GetByTradeID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePrivate, got.Role())

	_, err = store.Swaps.GetByTradeID(context.Background(), "missing")
	assert.True(t, repositories.IsNotFound(err))
}

func TestSwapRepository_ConditionalUpdatesOnlyTouchPending(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	offer := createSwap(t, store, openOffer(orig.ID, "0xA", "0xB"))

	n, err := store.Swaps.CompletePending(ctx, offer.ID, repositories.Settlement{AcceptSign: "s", Tx: "0xtx"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// terminal rows never move again
	n, err = store.Swaps.CompletePending(ctx, offer.ID, repositories.Settlement{})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Swaps.DeclinePending(ctx, offer.ID, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Swaps.CancelPending(ctx, offer.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := store.Swaps.GetByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCompleted, got.Status)
	assert.Equal(t, "0xtx", got.Tx)
}

func TestSwapRepository_GroupOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	s1 := createSwap(t, store, openOffer(orig.ID, "0xA", "0xB"))
	s2 := createSwap(t, store, openOffer(orig.ID, "0xA", "0xC"))
	s3 := createSwap(t, store, openOffer(orig.ID, "0xA", "0xD"))

	anchors, err := store.Swaps.GroupAnchors(ctx, orig.ID)
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, orig.ID, anchors[0].ID)

	counts, err := store.Swaps.CountPendingOffers(ctx, []int64{orig.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[orig.ID])

	rivals, err := store.Swaps.PendingOffers(ctx, orig.ID, s2.ID)
	require.NoError(t, err)
	require.Len(t, rivals, 2)
	assert.Equal(t, []int64{s1.ID, s3.ID}, []int64{rivals[0].ID, rivals[1].ID})

	n, err := store.Swaps.DeclinePendingOffers(ctx, orig.ID, s2.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = store.Swaps.CloseOriginal(ctx, orig.ID, models.SwapCompleted)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.Swaps.GetByID(ctx, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapPending, got.Status)
}

func TestSwapRepository_WinnerIndexRejectsSecondCompletion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	s1 := createSwap(t, store, openOffer(orig.ID, "0xA", "0xB"))
	s2 := createSwap(t, store, openOffer(orig.ID, "0xA", "0xC"))

	_, err := store.Swaps.CompletePending(ctx, s1.ID, repositories.Settlement{})
	require.NoError(t, err)

	_, err = store.Swaps.CompletePending(ctx, s2.ID, repositories.Settlement{})
	require.Error(t, err)
	assert.True(t, repositories.IsRepositoryError(err))
}

func TestSwapRepository_FindFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	createSwap(t, store, openOriginal("0xB"))
	offer := createSwap(t, store, openOffer(orig.ID, "0xA", "0xC"))
	_, err := store.Swaps.DeclinePending(ctx, offer.ID, "")
	require.NoError(t, err)

	market, err := store.Swaps.Find(ctx, repositories.SwapFilter{
		Mode:          models.SwapModeOpen,
		OriginalsOnly: true,
		Statuses:      []models.SwapStatus{models.SwapPending},
	})
	require.NoError(t, err)
	assert.Len(t, market, 2)

	history, err := store.Swaps.Find(ctx, repositories.SwapFilter{
		Party:       "0xC",
		NotStatuses: []models.SwapStatus{models.SwapPending},
	})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, offer.ID, history[0].ID)

	total, err := store.Swaps.Count(ctx, repositories.SwapFilter{Party: "0xA"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	page, err := store.Swaps.Find(ctx, repositories.SwapFilter{OriginalsOnly: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSwapRepository_CountCompletedNegotiations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	orig := createSwap(t, store, openOriginal("0xA"))
	offer := createSwap(t, store, openOffer(orig.ID, "0xA", "0xB"))
	_, err := store.Swaps.CompletePending(ctx, offer.ID, repositories.Settlement{})
	require.NoError(t, err)
	_, err = store.Swaps.CloseOriginal(ctx, orig.ID, models.SwapCompleted)
	require.NoError(t, err)

	count, err := store.Swaps.CountCompletedNegotiations(ctx, "0xA")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	orig := createSwap(t, store, openOriginal("0xA"))

	err := store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repos) error {
		n, err := repos.Swaps.CancelPending(ctx, orig.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Swaps.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapPending, got.Status)

	err = store.WithTransaction(ctx, func(ctx context.Context, repos *repositories.Repos) error {
		_, err := repos.Swaps.CancelPending(ctx, orig.ID)
		return err
	})
	require.NoError(t, err)

	got, err = store.Swaps.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCancelled, got.Status)
}

func TestUserRepository_EnsureIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Users.Ensure(ctx, "0xA"))
	user, err := store.Users.GetByAddress(ctx, "0xA")
	require.NoError(t, err)
	assert.Equal(t, []string{"new_user"}, user.Tags)

	user.ReplaceTag("new_user", "trader")
	require.NoError(t, store.Users.Update(ctx, user))

	require.NoError(t, store.Users.Ensure(ctx, "0xA"))
	user, err = store.Users.GetByAddress(ctx, "0xA")
	require.NoError(t, err)
	assert.Equal(t, []string{"trader"}, user.Tags)

	_, err = store.Users.GetByAddress(ctx, "0xZ")
	assert.True(t, repositories.IsNotFound(err))
}

func TestNotificationRepository_Inbox(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, status := range []models.NotificationStatus{models.NotificationReceived, models.NotificationCompleted, models.NotificationCancelled} {
		require.NoError(t, store.Notifications.Create(ctx, &models.Notification{
			ReceiverAddress:   "0xB",
			OriginatorAddress: "0xA",
			SwapID:            int64(i + 1),
			SwapMode:          models.SwapModePrivate,
			Status:            status,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}))
	}

	unread, err := store.Notifications.Unread(ctx, "0xB", time.Time{})
	require.NoError(t, err)
	require.Len(t, unread, 3)
	assert.NotEmpty(t, unread[0].ID)

	since, err := store.Notifications.Unread(ctx, "0xB", base.Add(30*time.Second))
	require.NoError(t, err)
	assert.Len(t, since, 2)

	n, err := store.Notifications.MarkRead(ctx, "0xB", unread[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// receiver scoping
	n, err = store.Notifications.MarkRead(ctx, "0xC", unread[1].ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Notifications.MarkAllRead(ctx, "0xB")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rows, total, err := store.Notifications.History(ctx, "0xB", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, rows, 2)

	n, err = store.Notifications.Delete(ctx, "0xB", unread[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Notifications.DeleteAll(ctx, "0xB")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
