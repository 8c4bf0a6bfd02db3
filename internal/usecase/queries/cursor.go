package queries

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bot-for-order/internal/pkg/errs"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
	CursorVersionV1  = "v1"
)

var ErrInvalidCursor = errs.Validation("INVALID_CURSOR", "invalid pagination cursor")

// Position is the keyset of the last row a page returned.
type Position struct {
	CreatedAt time.Time
	ID        string
}

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeAfterCursor(p Position) string {
	cursorData := fmt.Sprintf("%s:%d:%s", CursorVersionV1, p.CreatedAt.UnixMicro(), p.ID)
	return base64.URLEncoding.EncodeToString([]byte(cursorData))
}

func DecodeAfterCursor(cursor string) (Position, error) {
	if cursor == "" {
		return Position{}, errs.Wrap(ErrInvalidCursor, "cursor cannot be empty")
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Position{}, errs.Wrap(ErrInvalidCursor, "cursor is not base64url")
	}

	parts := strings.SplitN(string(decoded), ":", 3)
	if len(parts) != 3 || parts[0] != CursorVersionV1 || parts[2] == "" {
		return Position{}, errs.Wrap(ErrInvalidCursor, "expected 'v1:<micros>:<id>'")
	}

	micros, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Position{}, errs.Wrapf(ErrInvalidCursor, "invalid timestamp %q", parts[1])
	}

	return Position{CreatedAt: time.UnixMicro(micros).UTC(), ID: parts[2]}, nil
}

type Cursor struct {
	After string `json:"after,omitempty"`
}

// Position decodes the cursor; a nil or empty cursor means the first page.
func (c *Cursor) Position() (*Position, error) {
	if c == nil || c.After == "" {
		return nil, nil
	}
	p, err := DecodeAfterCursor(c.After)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
