package notify

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

func setupStore(t *testing.T) *repositories.Store {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "notify.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(context.Background()))
	return repositories.NewStore(db.BunDB())
}

type recordingSink struct {
	name string
	err  error
	mu   sync.Mutex
	got  []*models.Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func sampleSwap() *models.Swap {
	return &models.Swap{
		ID:            7,
		OpenTradeID:   3,
		SwapMode:      models.SwapModeOpen,
		OfferType:     models.OfferTypePrimary,
		InitAddress:   "0xA",
		AcceptAddress: "0xB",
	}
}

func TestEmitter_StoresAndMirrors(t *testing.T) {
	store := setupStore(t)
	ok := &recordingSink{name: "ok"}
	broken := &recordingSink{name: "broken", err: errors.New("down")}
	emitter := NewEmitter(store.Notifications, ok, broken)

	err := emitter.Notify(context.Background(), NoticeFor(sampleSwap(), "0xA", "0xB", models.NotificationCompleted))
	require.NoError(t, err)

	rows, err := store.Notifications.Unread(context.Background(), "0xB", time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0xA", rows[0].OriginatorAddress)
	assert.Equal(t, models.NotificationCompleted, rows[0].Status)
	assert.EqualValues(t, 3, rows[0].OpenTradeID)

	require.Len(t, ok.got, 1)
	require.Len(t, broken.got, 1)
	assert.Equal(t, rows[0].ID, ok.got[0].ID)
}

func TestEmitter_SkipsEmptyReceiver(t *testing.T) {
	store := setupStore(t)
	sink := &recordingSink{name: "sink"}
	emitter := NewEmitter(store.Notifications, sink)

	swap := &models.Swap{ID: 1, SwapMode: models.SwapModePrivate, InitAddress: "0xA"}
	require.NoError(t, emitter.Notify(context.Background(), NoticeFor(swap, "0xA", "", models.NotificationReceived)))
	assert.Empty(t, sink.got)
}

func TestDispatcher_SyncRunsInOrderAndSurvivesFailures(t *testing.T) {
	d := NewDispatcher(false, time.Second)
	var order []int

	d.Run(context.Background(), "test",
		func(context.Context) error { order = append(order, 1); return errors.New("first fails") },
		func(context.Context) error { order = append(order, 2); panic("second panics") },
		func(context.Context) error { order = append(order, 3); return nil },
	)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatcher_AsyncOutlivesCallerContext(t *testing.T) {
	d := NewDispatcher(true, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	var ran atomic.Bool
	release := make(chan struct{})
	d.Run(ctx, "test", func(hookCtx context.Context) error {
		<-release
		ran.Store(hookCtx.Err() == nil)
		return nil
	})

	cancel()
	close(release)
	d.Wait()
	assert.True(t, ran.Load())
}

type fakePoster struct {
	embeds []discord.Embed
	err    error
}

func (f *fakePoster) CreateEmbeds(embeds []discord.Embed, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.embeds = append(f.embeds, embeds...)
	return &discord.Message{}, f.err
}

func TestDiscordSink_Send(t *testing.T) {
	poster := &fakePoster{}
	sink := newDiscordSink(poster)

	n := &models.Notification{
		ReceiverAddress:   "0xB",
		OriginatorAddress: "0xA",
		SwapID:            7,
		TradeID:           "T1",
		SwapMode:          models.SwapModePrivate,
		Status:            models.NotificationCancelled,
		CreatedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, sink.Send(context.Background(), n))
	require.Len(t, poster.embeds, 1)

	embed := poster.embeds[0]
	assert.Equal(t, "Swap CANCELLED", embed.Title)
	assert.Contains(t, embed.Description, "0xA")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "T1", embed.Fields[2].Value)

	poster.err = errors.New("rate limited")
	assert.Error(t, sink.Send(context.Background(), n))
}

func TestNewDiscordSink_InvalidID(t *testing.T) {
	_, err := NewDiscordSink("not-a-snowflake", "token")
	assert.Error(t, err)
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisSink_Send(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewRedisSink(pub)

	n := &models.Notification{ID: "abc", ReceiverAddress: "0xB", Status: models.NotificationReceived}
	require.NoError(t, sink.Send(context.Background(), n))
	assert.Equal(t, "swapbook:notifications:0xB", pub.channel)

	var decoded models.Notification
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, "abc", decoded.ID)

	pub.err = errors.New("connection refused")
	assert.Error(t, sink.Send(context.Background(), n))
}

func TestInbox_HistoryPaging(t *testing.T) {
	store := setupStore(t)
	emitter := NewEmitter(store.Notifications)
	inbox := NewInbox(store.Notifications)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, emitter.Notify(ctx, NoticeFor(sampleSwap(), "0xA", "0xB", models.NotificationReceived)))
	}

	rows, total, err := inbox.History(ctx, "0xB", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rows, 2)

	ok, err := inbox.MarkRead(ctx, "0xB", rows[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = inbox.Delete(ctx, "0xB", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := inbox.MarkAllRead(ctx, "0xB")
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	unread, err := inbox.Unread(ctx, "0xB", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNormalizePage(t *testing.T) {
	page, limit := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	_, limit = NormalizePage(3, 1000)
	assert.Equal(t, 100, limit)
}
