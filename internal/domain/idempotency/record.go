package idempotency

import (
	"fmt"
	"time"
)

// Key scopes a client-supplied idempotency key to a merchant, user and operation.
type Key struct {
	MerchantID string
	UserID     int64
	Scope      string
	ClientKey  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s/%s", k.MerchantID, k.UserID, k.Scope, k.ClientKey)
}

type Record struct {
	Key            Key
	RequestHash    string
	ResponseStatus *int
	ResponseBody   []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsCompleted reports whether the protected operation stored its response.
func (r *Record) IsCompleted() bool {
	return r.ResponseStatus != nil
}

type Response struct {
	Status int
	Body   []byte
}

func (r Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

type OutcomeKind int

const (
	Executed OutcomeKind = iota + 1
	Replay
)

type Outcome struct {
	Kind     OutcomeKind
	Response Response
}

func (o *Outcome) IsReplay() bool {
	return o.Kind == Replay
}
