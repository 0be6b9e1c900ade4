package config

import "time"

// Application-wide constants organized by domain

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	DefaultTxTimeout    = 15 * time.Second
	NotifyTimeout       = 10 * time.Second
	NetworkDialTimeout  = 5 * time.Second
	ShutdownTimeout     = 15 * time.Second

	// Connection retries
	DefaultMaxRetries    = 3
	DefaultRetryInterval = time.Second

	// Cache settings
	CacheSize = 4096
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	SearchLimit     = 25
)

// Notification fan-out
const (
	MaxConcurrentSinks   = 4
	RedisChannelPrefix   = "swapbook:notifications:"
	DiscordEmbedColor    = 0x2B2D31
	DiscordEmbedTitleFmt = "Swap %s"
)

// User tags
const (
	TagNewUser         = "new_user"
	TagTrader          = "trader"
	TagCommunityMember = "community_member"
)
