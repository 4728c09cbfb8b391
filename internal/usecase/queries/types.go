package queries

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizedUserView is read-optimized user data with authorization info.
type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// UserSummaryView backs GET /vouchers/user/summary.
type UserSummaryView struct {
	UserID  uuid.UUID `json:"user_id"`
	Claimed int       `json:"claimed"`
	Limit   int       `json:"limit"`
	Premium bool      `json:"premium"`
}

// ClaimView is a single row of claim history.
type ClaimView struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// QueueMetricsView backs GET /vouchers/queue/metrics.
type QueueMetricsView struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Delayed   int64 `json:"delayed"`
	CacheHits int64 `json:"cache_hits"`
	CacheMiss int64 `json:"cache_misses"`
}
