package request

import (
	"io"
	"mime/multipart"

	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/errs"
)

type SelectPaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

func (r *SelectPaymentMethodRequest) ToDomain() (payment.MethodType, error) {
	method := payment.MethodType(r.Method)
	if !method.IsValid() {
		return "", payment.ErrInvalidMethodType
	}
	return method, nil
}

// SubmitClaimForm is bound from multipart/form-data; files go under "attachments".
type SubmitClaimForm struct {
	TxID        *string                 `form:"tx_id"`
	Comment     *string                 `form:"comment"`
	Attachments []*multipart.FileHeader `form:"attachments"`
}

// ToDomain reads every file into memory; the size limit is enforced by validation
// after reading at most maxBytes+1 bytes per file. The count is checked before
// any file is opened.
func (f *SubmitClaimForm) ToDomain(maxCount int, maxBytes int64) (payment.ClaimInput, error) {
	if len(f.Attachments) > maxCount {
		return payment.ClaimInput{}, errs.Wrapf(payment.ErrTooManyAttachments, "%d attachments", len(f.Attachments))
	}
	in := payment.ClaimInput{TxID: f.TxID, Comment: f.Comment}
	for _, fh := range f.Attachments {
		data, err := readPart(fh, maxBytes+1)
		if err != nil {
			return payment.ClaimInput{}, errs.Wrapf(err, "read attachment %q", fh.Filename)
		}
		in.Attachments = append(in.Attachments, payment.AttachmentInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return in, nil
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

type SetPaymentDetailsRequest struct {
	Text string `json:"text" binding:"required"`
}

type RequestClarificationRequest struct {
	Message *string `json:"message"`
}
