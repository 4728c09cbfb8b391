//go:build unit || e2e

package builder

import (
	"time"

	"gin-clean-starter/internal/domain/claim"

	"github.com/google/uuid"
)

type ClaimBuilder struct {
	UserID    uuid.UUID
	Code      string
	RequestID string
	Metadata  claim.ClientMetadata
	Status    claim.Status
}

func NewClaimBuilder() *ClaimBuilder {
	return &ClaimBuilder{
		UserID:    uuid.New(),
		Code:      "SUMMER2024",
		RequestID: uuid.New().String(),
		Metadata:  claim.ClientMetadata{IP: "127.0.0.1", UserAgent: "test-agent", DeviceID: "device-1"},
		Status:    claim.StatusPending,
	}
}

func (b *ClaimBuilder) With(mutate func(*ClaimBuilder)) *ClaimBuilder {
	mutate(b)
	return b
}

func (b *ClaimBuilder) BuildDomain() (*claim.Claim, error) {
	now := time.Now()
	if b.Status == claim.StatusSuccess {
		return claim.NewSuccess(b.UserID, b.Code, b.RequestID, b.Metadata, now)
	}
	return claim.NewPending(b.UserID, b.Code, b.RequestID, b.Metadata, now)
}

func (b *ClaimBuilder) WithRequestID(requestID string) *ClaimBuilder {
	b.RequestID = requestID
	return b
}

func (b *ClaimBuilder) WithStatus(status claim.Status) *ClaimBuilder {
	b.Status = status
	return b
}

func (b *ClaimBuilder) WithUserID(userID uuid.UUID) *ClaimBuilder {
	b.UserID = userID
	return b
}
