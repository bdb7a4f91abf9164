package models

const (
	// DefaultFetchSize is the chunk size used when a listing has no explicit size.
	DefaultFetchSize = 1000
	// MaxFetchSize caps the rows requested from storage in one query.
	MaxFetchSize = 10000

	// DefaultRedisTTL время жизни кэшированного пользователя в Redis
	DefaultRedisTTL = 10 * 60 // 10 минут в секундах

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 50

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах
)

const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)
