package response

import (
	"time"

	"github.com/google/uuid"

	"gin-clean-starter/internal/usecase/commands"
	"gin-clean-starter/internal/usecase/queries"
)

// ClaimResponse mirrors commands.ClaimOutcome; kept as a distinct type so
// the wire shape doesn't drift silently if the coordinator's internal
// result shape changes.
type ClaimResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Status            string `json:"status,omitempty"`
	RequestID         string `json:"requestId,omitempty"`
	VouchersRemaining *int   `json:"vouchersRemaining,omitempty"`
}

func NewClaimResponse(o *commands.ClaimOutcome) ClaimResponse {
	return ClaimResponse{
		Success:           o.Success,
		Message:           o.Message,
		Status:            o.Status,
		RequestID:         o.RequestID,
		VouchersRemaining: o.VouchersRemaining,
	}
}

type ClaimStatusResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	ClaimedAt time.Time `json:"claimed_at"`
}

func NewClaimStatusResponse(v *queries.ClaimView) ClaimStatusResponse {
	return ClaimStatusResponse{ID: v.ID, Code: v.Code, Status: v.Status, ClaimedAt: v.ClaimedAt}
}

type HistoryResponse struct {
	Data []ClaimStatusResponse `json:"data"`
}

func NewHistoryResponse(views []queries.ClaimView) HistoryResponse {
	data := make([]ClaimStatusResponse, 0, len(views))
	for _, v := range views {
		data = append(data, NewClaimStatusResponse(&v))
	}
	return HistoryResponse{Data: data}
}

type UserSummaryResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Claimed int       `json:"claimed"`
	Limit   int       `json:"limit"`
	Premium bool      `json:"premium"`
}

func NewUserSummaryResponse(v *queries.UserSummaryView) UserSummaryResponse {
	return UserSummaryResponse{UserID: v.UserID, Claimed: v.Claimed, Limit: v.Limit, Premium: v.Premium}
}

type QueueMetricsResponse struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Delayed   int64 `json:"delayed"`
	CacheHits int64 `json:"cache_hits"`
	CacheMiss int64 `json:"cache_misses"`
}

func NewQueueMetricsResponse(v *queries.QueueMetricsView) QueueMetricsResponse {
	return QueueMetricsResponse{
		Waiting:   v.Waiting,
		Active:    v.Active,
		Completed: v.Completed,
		Failed:    v.Failed,
		Delayed:   v.Delayed,
		CacheHits: v.CacheHits,
		CacheMiss: v.CacheMiss,
	}
}
