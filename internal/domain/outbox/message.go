package outbox

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusFailed     Status = "FAILED"
)

// Message types understood by the registered handlers.
const (
	TypeAdminClaimSubmitted         = "admin.claim_submitted"
	TypeBuyerClarificationRequested = "buyer.clarification_requested"
	TypeOrderStatusChanged          = "order.status_changed"
)

type Message struct {
	ID            uuid.UUID
	Type          string
	Payload       []byte
	Status        Status
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
	LastError     *string
}

// NewMessage encodes payload as JSON and schedules the message for immediate delivery.
func NewMessage(msgType string, payload any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:            uuid.New(),
		Type:          msgType,
		Payload:       raw,
		Status:        StatusNew,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}
