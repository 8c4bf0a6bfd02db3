package payment

import (
	"strings"
	"unicode/utf8"

	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
)

var (
	ErrTxIDTooLong         = errs.Validation("TXID_TOO_LONG", "transaction id is too long")
	ErrCommentTooLong      = errs.Validation("COMMENT_TOO_LONG", "comment is too long")
	ErrTooManyAttachments  = errs.Validation("TOO_MANY_ATTACHMENTS", "too many attachments")
	ErrAttachmentTooLarge  = errs.Validation("ATTACHMENT_TOO_LARGE", "attachment exceeds the size limit")
	ErrAttachmentEmpty     = errs.Validation("ATTACHMENT_EMPTY", "attachment is empty")
	ErrAttachmentType      = errs.Validation("ATTACHMENT_TYPE_NOT_ALLOWED", "attachment content type is not allowed")
	ErrClaimEmpty          = errs.Validation("CLAIM_EMPTY", "claim needs a transaction id, a comment or an attachment")
	ErrRejectReasonTooLong = errs.Validation("REJECT_REASON_TOO_LONG", "reject reason is too long")
	ErrDetailsEmpty        = errs.Validation("DETAILS_EMPTY", "payment details must not be empty")
	ErrDetailsTooLong      = errs.Validation("DETAILS_TOO_LONG", "payment details are too long")
	ErrInvalidMethodType   = errs.Validation("INVALID_METHOD_TYPE", "unknown payment method type")
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

type Limits struct {
	MaxTxIDLength      int
	MaxCommentLength   int
	MaxAttachments     int
	MaxAttachmentBytes int64
	MaxRejectReason    int
	MaxDetailsLength   int
}

type AttachmentInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ClaimInput struct {
	TxID        *string
	Comment     *string
	Attachments []AttachmentInput
}

// Normalize trims free-text fields and drops blank ones.
func (in ClaimInput) Normalize() ClaimInput {
	in.TxID = ptr.Trimmed(in.TxID)
	in.Comment = ptr.Trimmed(in.Comment)
	return in
}

func (in ClaimInput) Validate(l Limits) error {
	if in.TxID == nil && in.Comment == nil && len(in.Attachments) == 0 {
		return ErrClaimEmpty
	}
	if in.TxID != nil && utf8.RuneCountInString(*in.TxID) > l.MaxTxIDLength {
		return ErrTxIDTooLong
	}
	if in.Comment != nil && utf8.RuneCountInString(*in.Comment) > l.MaxCommentLength {
		return ErrCommentTooLong
	}
	if len(in.Attachments) > l.MaxAttachments {
		return ErrTooManyAttachments
	}
	for _, a := range in.Attachments {
		if len(a.Data) == 0 {
			return errs.Wrapf(ErrAttachmentEmpty, "attachment %q", a.Filename)
		}
		if int64(len(a.Data)) > l.MaxAttachmentBytes {
			return errs.Wrapf(ErrAttachmentTooLarge, "attachment %q", a.Filename)
		}
		if _, ok := allowedContentTypes[strings.ToLower(a.ContentType)]; !ok {
			return errs.Wrapf(ErrAttachmentType, "attachment %q: %s", a.Filename, a.ContentType)
		}
	}
	return nil
}

func ValidateRejectReason(reason string, l Limits) error {
	if utf8.RuneCountInString(reason) > l.MaxRejectReason {
		return ErrRejectReasonTooLong
	}
	return nil
}

func ValidateDetails(text string, l Limits) error {
	if strings.TrimSpace(text) == "" {
		return ErrDetailsEmpty
	}
	if utf8.RuneCountInString(text) > l.MaxDetailsLength {
		return ErrDetailsTooLong
	}
	return nil
}

