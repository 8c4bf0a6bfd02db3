package payment

import (
	"time"

	"bot-for-order/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrClaimNotFound = errs.Conflict("CLAIM_NOT_FOUND", "no submitted payment claim for this order")

type ClaimStatus string

const (
	ClaimSubmitted ClaimStatus = "SUBMITTED"
	ClaimAccepted  ClaimStatus = "ACCEPTED"
	ClaimRejected  ClaimStatus = "REJECTED"
)

type Claim struct {
	ID           uuid.UUID
	OrderID      string
	MethodType   MethodType
	TxID         *string
	Comment      *string
	Status       ClaimStatus
	RejectReason *string
	CreatedAt    time.Time
	DecidedAt    *time.Time
}

func NewClaim(orderID string, method MethodType, txID, comment *string, at time.Time) *Claim {
	return &Claim{
		ID:         uuid.New(),
		OrderID:    orderID,
		MethodType: method,
		TxID:       txID,
		Comment:    comment,
		Status:     ClaimSubmitted,
		CreatedAt:  at,
	}
}

type Attachment struct {
	ID          uuid.UUID
	ClaimID     uuid.UUID
	StorageKey  string
	Filename    string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

func NewAttachment(claimID uuid.UUID, storageKey string, in AttachmentInput, at time.Time) Attachment {
	return Attachment{
		ID:          uuid.New(),
		ClaimID:     claimID,
		StorageKey:  storageKey,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        int64(len(in.Data)),
		CreatedAt:   at,
	}
}

// Decision is the admin verdict on a submitted claim.
type Decision int

const (
	DecisionAccept Decision = iota + 1
	DecisionReject
)

func (d Decision) ClaimStatus() ClaimStatus {
	switch d {
	case DecisionAccept:
		return ClaimAccepted
	case DecisionReject:
		return ClaimRejected
	default:
		panic("payment: unknown decision")
	}
}

// RejectOutcome describes what a rejection did to the order.
type RejectOutcome int

const (
	RejectUnchanged RejectOutcome = iota
	RejectReopened
	RejectCanceled
)

func (o RejectOutcome) String() string {
	switch o {
	case RejectUnchanged:
		return "UNCHANGED"
	case RejectReopened:
		return "REOPENED"
	case RejectCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}
