package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the event an audit row shadows. New actions are
// additive; the store transaction that inserts a claim or a refund is
// the only writer.
type Action string

const (
	ActionClaimed      Action = "CLAIMED"
	ActionLimitReached Action = "LIMIT_REACHED"
	ActionRefund       Action = "REFUND"
)

// Entry is the append-only shadow of every claim insertion and refund,
// never read by the core — produced purely as a side effect of the
// claim/refund transactions.
type Entry struct {
	id        uuid.UUID
	userID    uuid.UUID
	action    Action
	metadata  map[string]any
	createdAt time.Time
}

func NewEntry(userID uuid.UUID, action Action, metadata map[string]any, now time.Time) *Entry {
	return &Entry{
		id:        uuid.New(),
		userID:    userID,
		action:    action,
		metadata:  metadata,
		createdAt: now,
	}
}

func (e *Entry) ID() uuid.UUID            { return e.id }
func (e *Entry) UserID() uuid.UUID        { return e.userID }
func (e *Entry) Action() Action           { return e.action }
func (e *Entry) Metadata() map[string]any { return e.metadata }
func (e *Entry) CreatedAt() time.Time     { return e.createdAt }
