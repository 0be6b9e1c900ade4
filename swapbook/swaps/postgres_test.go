package swaps_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
	"github.com/swapbook/swapbook/swapbook/notify"
	"github.com/swapbook/swapbook/swapbook/swaps"
	"github.com/swapbook/swapbook/swapbook/usertags"
)

// setupPostgresHarness starts a disposable postgres and wires an engine on it.
func setupPostgresHarness(t *testing.T) *harness {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("swapbook"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := database.FromBun(bun.NewDB(sqldb, pgdialect.New()))
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(ctx))

	store := repositories.NewStore(db.BunDB())
	engine := swaps.NewEngine(
		store,
		notify.NewEmitter(store.Notifications),
		usertags.NewUpdater(),
		notify.NewDispatcher(false, time.Second),
	)
	return &harness{store: store, engine: engine}
}

func TestPostgres_ConcurrentAcceptAndCancel(t *testing.T) {
	h := setupPostgresHarness(t)
	ctx := context.Background()
	original, offers := openGroup(t, h, "bob", "carol", "dave", "erin")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int64
	)
	for _, offer := range offers {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := h.engine.Accept(ctx, swaps.AcceptRequest{ID: id, AcceptAddress: "alice", AcceptSign: "acc"})
			if err != nil {
				assert.ErrorIs(t, err, swaps.ErrInvalidState)
				return
			}
			mu.Lock()
			winners = append(winners, id)
			mu.Unlock()
		}(offer.ID)
	}

	// a concurrent cancel either wins the group or loses to an accept
	wg.Add(1)
	var cancelErr error
	go func() {
		defer wg.Done()
		_, cancelErr = h.engine.CancelOpen(ctx, swaps.CancelOpenRequest{OpenTradeID: original.ID, SignMessage: "cancel"})
	}()
	wg.Wait()

	got, err := h.store.Swaps.GetByID(ctx, original.ID)
	require.NoError(t, err)

	if cancelErr == nil {
		assert.Empty(t, winners)
		assert.Equal(t, models.SwapCancelled, got.Status)
	} else {
		assert.ErrorIs(t, cancelErr, swaps.ErrInvalidState)
		assert.Len(t, winners, 1)
		assert.Equal(t, models.SwapCompleted, got.Status)
	}

	pending, err := h.store.Swaps.Count(ctx, repositories.SwapFilter{
		OpenTradeID: original.ID,
		Statuses:    []models.SwapStatus{models.SwapPending},
	})
	require.NoError(t, err)
	assert.Zero(t, pending)
	assertSingleWinner(t, h.store)
}

func TestPostgres_AcceptRacesSiblingReject(t *testing.T) {
	h := setupPostgresHarness(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		original, offers := openGroup(t, h, "bob", "carol", "dave")

		var (
			wg        sync.WaitGroup
			acceptErr error
			rejectErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = h.engine.Accept(ctx, swaps.AcceptRequest{ID: offers[0].ID, AcceptAddress: "alice", AcceptSign: "acc"})
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = h.engine.Reject(ctx, swaps.RejectRequest{ID: offers[1].ID, SignMessage: "no"})
		}()
		wg.Wait()

		// a sibling leaving PENDING mid-accept must not fail the accept
		require.NoError(t, acceptErr, "round %d", i)
		if rejectErr != nil {
			assert.ErrorIs(t, rejectErr, swaps.ErrInvalidState)
		}

		got, err := h.store.Swaps.GetByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SwapCompleted, got.Status)

		for _, offer := range offers[1:] {
			sibling, err := h.store.Swaps.GetByID(ctx, offer.ID)
			require.NoError(t, err)
			assert.Equal(t, models.SwapDeclined, sibling.Status)
		}
	}
	assertSingleWinner(t, h.store)
}
