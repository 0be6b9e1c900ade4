package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
	"github.com/swapbook/swapbook/swapbook/logger"
)

// SwapView is the read-side projection of a swap row.
type SwapView struct {
	*models.Swap
	Metadata        any    `json:"metadata"`
	SwapPreferences any    `json:"swap_preferences"`
	OfferCount      int    `json:"offer_count"`
	Role            string `json:"role"`
}

// Page is a slice of views plus the unpaged total.
type Page struct {
	Items []*SwapView `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type cacheKey struct {
	id        int64
	updatedAt int64
	field     string
}

// Service serves every read path. It never writes.
type Service struct {
	swaps    repositories.SwapRepository
	cache    *lru.Cache
	pageSize int
}

func NewService(swaps repositories.SwapRepository, cacheSize, pageSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = config.CacheSize
	}
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create payload cache: %w", err)
	}
	return &Service{swaps: swaps, cache: cache, pageSize: pageSize}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*SwapView, error) {
	swap, err := s.swaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.project(ctx, []*models.Swap{swap})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) GetByTradeID(ctx context.Context, tradeID string) (*SwapView, error) {
	swap, err := s.swaps.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	views, err := s.project(ctx, []*models.Swap{swap})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListPending returns every pending row the address is a party of.
func (s *Service) ListPending(ctx context.Context, address string) ([]*SwapView, error) {
	return s.list(ctx, "list_pending", repositories.SwapFilter{
		Party:    address,
		Statuses: []models.SwapStatus{models.SwapPending},
	})
}

// ListHistory returns the address's rows that reached a terminal status.
func (s *Service) ListHistory(ctx context.Context, address string) ([]*SwapView, error) {
	return s.list(ctx, "list_history", repositories.SwapFilter{
		Party:       address,
		NotStatuses: []models.SwapStatus{models.SwapPending},
	})
}

// ListMine returns the rows the address initiated, newest first.
func (s *Service) ListMine(ctx context.Context, address string) ([]*SwapView, error) {
	return s.list(ctx, "list_mine", repositories.SwapFilter{InitAddress: address})
}

// ListOpenMarket pages through pending open-market originals.
func (s *Service) ListOpenMarket(ctx context.Context, page, limit int) (*Page, error) {
	page, limit = s.normalize(page, limit)
	filter := openMarketFilter()

	total, err := s.swaps.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	items, err := s.list(ctx, "list_open_market", filter)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type searchItems []*models.Swap

func (items searchItems) Len() int { return len(items) }

func (items searchItems) String(i int) string {
	swap := items[i]
	return strings.ToLower(strings.Join([]string{swap.TradingChain, swap.InitAddress, swap.Metadata}, " "))
}

// Search fuzzy-matches open-market originals on chain, owner and raw metadata.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*SwapView, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}
	if query == "" {
		page, err := s.ListOpenMarket(ctx, 1, limit)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	}

	start := time.Now()
	open, err := s.swaps.Find(ctx, openMarketFilter())
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, searchItems(open))
	if len(matches) > limit {
		matches = matches[:limit]
	}
	found := make([]*models.Swap, len(matches))
	for i, match := range matches {
		found[i] = open[match.Index]
	}
	logger.LogQuery("search "+query, time.Since(start), nil)

	return s.project(ctx, found)
}

// SwapPreferences returns the decoded matching criteria of one swap.
func (s *Service) SwapPreferences(ctx context.Context, id int64) (any, error) {
	swap, err := s.swaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decode(swap, "swap_preferences", swap.SwapPreferences), nil
}

func openMarketFilter() repositories.SwapFilter {
	return repositories.SwapFilter{
		Mode:          models.SwapModeOpen,
		Statuses:      []models.SwapStatus{models.SwapPending},
		OriginalsOnly: true,
	}
}

func (s *Service) list(ctx context.Context, op string, filter repositories.SwapFilter) ([]*SwapView, error) {
	start := time.Now()
	rows, err := s.swaps.Find(ctx, filter)
	logger.LogQuery(op, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, rows)
}

// project decodes payloads and attaches offer counts to open originals.
func (s *Service) project(ctx context.Context, rows []*models.Swap) ([]*SwapView, error) {
	var groups []int64
	for _, swap := range rows {
		if swap.Role() == models.RoleOpenOriginal {
			groups = append(groups, swap.ID)
		}
	}
	counts, err := s.swaps.CountPendingOffers(ctx, groups)
	if err != nil {
		return nil, err
	}

	views := make([]*SwapView, 0, len(rows))
	for _, swap := range rows {
		views = append(views, &SwapView{
			Swap:            swap,
			Metadata:        s.decode(swap, "metadata", swap.Metadata),
			SwapPreferences: s.decode(swap, "swap_preferences", swap.SwapPreferences),
			OfferCount:      counts[swap.ID],
			Role:            string(swap.Role()),
		})
	}
	return views, nil
}

func (s *Service) decode(swap *models.Swap, field, raw string) any {
	key := cacheKey{id: swap.ID, updatedAt: swap.UpdatedAt.UnixNano(), field: field}
	if v, ok := s.cache.Get(key); ok {
		return v
	}

	v := Decode(raw)
	if str, ok := v.(string); ok && raw != "" {
		slog.Debug("Payload kept as raw string",
			slog.String("type", "db"),
			slog.Int64("swap_id", swap.ID),
			slog.String("field", field),
			slog.Int("length", len(str)),
		)
	}
	s.cache.Add(key, v)
	return v
}

func (s *Service) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	return page, limit
}
