package claim

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyRequestID     = errors.New("request id must not be empty")
	ErrRequestIDTooLong   = errors.New("request id exceeds 255 characters")
	ErrInvalidTransition  = errors.New("invalid claim status transition")
	ErrAlreadyRefunded    = errors.New("claim is already refunded")
)

const MaxRequestIDLength = 255

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// ClientMetadata is the request-identifying context carried with every
// claim attempt, used both for the fraud-scan index (§6) and the audit
// trail.
type ClientMetadata struct {
	IP       string
	UserAgent string
	DeviceID string
}

// Claim is the ledger row produced by a claim attempt. Invariant C1:
// status = refunded implies refundedAt is set, otherwise it is nil.
// Invariant C2 (at most one success per (user, code) pair) is enforced
// by the store transaction, not by this type.
type Claim struct {
	id           uuid.UUID
	userID       uuid.UUID
	code         string
	status       Status
	requestID    string
	metadata     ClientMetadata
	claimedAt    time.Time
	refundedAt   *time.Time
	refundedBy   *uuid.UUID
	refundReason string
}

func NewPending(userID uuid.UUID, code, requestID string, metadata ClientMetadata, now time.Time) (*Claim, error) {
	if err := validateRequestID(requestID); err != nil {
		return nil, err
	}

	return &Claim{
		id:        uuid.New(),
		userID:    userID,
		code:      code,
		status:    StatusPending,
		requestID: requestID,
		metadata:  metadata,
		claimedAt: now,
	}, nil
}

func NewSuccess(userID uuid.UUID, code, requestID string, metadata ClientMetadata, now time.Time) (*Claim, error) {
	c, err := NewPending(userID, code, requestID, metadata, now)
	if err != nil {
		return nil, err
	}
	c.status = StatusSuccess
	return c, nil
}

// Hydrate reconstructs a Claim from a persisted row.
func Hydrate(
	id, userID uuid.UUID,
	code string,
	status Status,
	requestID string,
	metadata ClientMetadata,
	claimedAt time.Time,
	refundedAt *time.Time,
	refundedBy *uuid.UUID,
	refundReason string,
) (*Claim, error) {
	if err := validateRequestID(requestID); err != nil {
		return nil, err
	}
	if status == StatusRefunded && refundedAt == nil {
		return nil, errors.New("refunded claim must carry refunded_at")
	}
	if status != StatusRefunded && refundedAt != nil {
		return nil, errors.New("non-refunded claim must not carry refunded_at")
	}

	return &Claim{
		id:           id,
		userID:       userID,
		code:         code,
		status:       status,
		requestID:    requestID,
		metadata:     metadata,
		claimedAt:    claimedAt,
		refundedAt:   refundedAt,
		refundedBy:   refundedBy,
		refundReason: refundReason,
	}, nil
}

func validateRequestID(requestID string) error {
	if requestID == "" {
		return ErrEmptyRequestID
	}
	if len(requestID) > MaxRequestIDLength {
		return ErrRequestIDTooLong
	}
	return nil
}

// MarkRefunded transitions success -> refunded (the only legal edge out of
// success per the state machine in §4.10); any other starting status is
// rejected.
func (c *Claim) MarkRefunded(by *uuid.UUID, reason string, now time.Time) error {
	if c.status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if c.status != StatusSuccess {
		return ErrInvalidTransition
	}

	c.status = StatusRefunded
	c.refundedAt = &now
	c.refundedBy = by
	c.refundReason = reason
	return nil
}

func (c *Claim) ID() uuid.UUID               { return c.id }
func (c *Claim) UserID() uuid.UUID           { return c.userID }
func (c *Claim) Code() string                { return c.code }
func (c *Claim) Status() Status              { return c.status }
func (c *Claim) RequestID() string           { return c.requestID }
func (c *Claim) Metadata() ClientMetadata    { return c.metadata }
func (c *Claim) ClaimedAt() time.Time        { return c.claimedAt }
func (c *Claim) RefundedAt() *time.Time      { return c.refundedAt }
func (c *Claim) RefundedBy() *uuid.UUID      { return c.refundedBy }
func (c *Claim) RefundReason() string        { return c.refundReason }
func (c *Claim) IsRefunded() bool            { return c.status == StatusRefunded }
