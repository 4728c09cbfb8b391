package queries

import (
	"context"

	"github.com/google/uuid"

	"gin-clean-starter/internal/infra"
	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/infra/store"
	"gin-clean-starter/internal/pkg/errs"
)

var ErrClaimNotFound = errs.New("claim not found")

// VoucherQueries is the read side of the claim pipeline: status lookups,
// history, and the per-user summary backing GET /vouchers/user/summary,
// plus the operator-facing queue metrics. None of it touches the claim
// transaction — it is plain reads over the same store/KV the commands
// side writes.
type VoucherQueries interface {
	GetClaimStatus(ctx context.Context, userID uuid.UUID, requestID string) (*ClaimView, error)
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]ClaimView, error)
	UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummaryView, error)
	QueueMetrics(ctx context.Context) (*QueueMetricsView, error)
}

type voucherQueriesImpl struct {
	gateway *store.Gateway
	cache   *cache.Cache
	queue   *queue.Queue
}

func NewVoucherQueries(gateway *store.Gateway, c *cache.Cache, q *queue.Queue) VoucherQueries {
	return &voucherQueriesImpl{gateway: gateway, cache: c, queue: q}
}

func (q *voucherQueriesImpl) GetClaimStatus(ctx context.Context, userID uuid.UUID, requestID string) (*ClaimView, error) {
	c, err := q.gateway.Claims().GetByRequestID(ctx, requestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if c.UserID() != userID {
		// Same response as not found: do not leak another user's claim.
		return nil, ErrClaimNotFound
	}

	return &ClaimView{ID: c.ID(), Code: c.Code(), Status: string(c.Status()), ClaimedAt: c.ClaimedAt()}, nil
}

func (q *voucherQueriesImpl) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]ClaimView, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	claims, err := q.gateway.Claims().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]ClaimView, 0, len(claims))
	for _, c := range claims {
		out = append(out, ClaimView{ID: c.ID(), Code: c.Code(), Status: string(c.Status()), ClaimedAt: c.ClaimedAt()})
	}
	return out, nil
}

func (q *voucherQueriesImpl) UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummaryView, error) {
	if data, ok := q.cache.GetUser(ctx, userID.String()); ok {
		return &UserSummaryView{UserID: userID, Claimed: data.Claimed, Limit: data.Limit, Premium: data.Premium}, nil
	}

	u, err := q.gateway.Users().Get(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &UserSummaryView{UserID: u.ID(), Claimed: u.Claimed(), Limit: u.Limit(), Premium: u.Premium()}, nil
}

func (q *voucherQueriesImpl) QueueMetrics(ctx context.Context) (*QueueMetricsView, error) {
	counts, err := q.queue.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return &QueueMetricsView{
		Waiting:   counts.Waiting,
		Active:    counts.Active,
		Completed: counts.Completed,
		Failed:    counts.Failed,
		Delayed:   counts.Delayed,
		CacheHits: q.cache.Hits(),
		CacheMiss: q.cache.Misses(),
	}, nil
}

// ClaimRepository is exposed through store.Gateway.Claims() the same
// way Users()/Vouchers() are, for plain reads outside a transaction.
