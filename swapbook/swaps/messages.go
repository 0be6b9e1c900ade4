package swaps

// Message tags returned with every response. Clients route on these.
const (
	MsgCreatePrivateSwap   = "create_private_swap"
	MsgCreateOpenSwap      = "create_open_swap"
	MsgProposeOpenSwap     = "propose_open_swap"
	MsgCounterSwapOffer    = "counter_swap_offer"
	MsgAcceptOpenSwap      = "accept_open_swap"
	MsgAcceptPrivateSwap   = "accept_private_swap"
	MsgRejectedSwap        = "rejected_swap"
	MsgCancelOpenSwap      = "cancel_open_swap"
	MsgCancelPrivateSwap   = "cancel_private_swap"
	MsgCloseOpenSwapOffers = "close_open_swap_offers"
	MsgSubnameMinted       = "subname_minted"

	MsgGetSwap         = "get_swap"
	MsgPendingSwaps    = "pending_swaps"
	MsgSwapHistory     = "swap_history"
	MsgOpenMarketSwaps = "open_market_swaps"
	MsgMySwaps         = "my_swaps"
	MsgSearchSwaps     = "search_swaps"
	MsgSwapPreferences = "swap_preferences"

	MsgNotifications        = "notifications"
	MsgNotificationsHistory = "notifications_history"
	MsgNotificationRead     = "notification_read"
	MsgNotificationsRead    = "notifications_read"
	MsgNotificationDeleted  = "notification_deleted"
	MsgNotificationsDeleted = "notifications_deleted"
)
