package order

import (
	"time"

	"github.com/google/uuid"
)

type HistoryEntry struct {
	ID      uuid.UUID
	OrderID string
	From    *Status
	To      Status
	ActorID int64
	Comment string
	At      time.Time
}

func NewHistoryEntry(orderID string, from *Status, to Status, actorID int64, comment string, at time.Time) HistoryEntry {
	return HistoryEntry{
		ID:      uuid.New(),
		OrderID: orderID,
		From:    from,
		To:      to,
		ActorID: actorID,
		Comment: comment,
		At:      at,
	}
}

// StatusPtr helps building history entries from a captured previous status.
func StatusPtr(s Status) *Status {
	return &s
}
