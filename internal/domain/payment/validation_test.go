//go:build unit

package payment_test

import (
	"strings"
	"testing"

	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limits = payment.Limits{
	MaxTxIDLength:      8,
	MaxCommentLength:   10,
	MaxAttachments:     2,
	MaxAttachmentBytes: 4,
	MaxRejectReason:    5,
	MaxDetailsLength:   6,
}


func png(data string) payment.AttachmentInput {
	return payment.AttachmentInput{Filename: "a.png", ContentType: "image/png", Data: []byte(data)}
}

func TestClaimInput_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		in    payment.ClaimInput
		errIs error
	}{
		{name: "tx id only", in: payment.ClaimInput{TxID: ptr.Of("tx-1")}},
		{name: "attachment only", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{png("ab")}}},
		{name: "upper case content type", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{
			{Filename: "r.pdf", ContentType: "Application/PDF", Data: []byte("x")},
		}}},
		{name: "multibyte comment at limit", in: payment.ClaimInput{Comment: ptr.Of("оплачено!!")}},
		{name: "empty", in: payment.ClaimInput{}, errIs: payment.ErrClaimEmpty},
		{name: "blank fields", in: payment.ClaimInput{TxID: ptr.Of("  "), Comment: ptr.Of("\n")}, errIs: payment.ErrClaimEmpty},
		{name: "tx id too long", in: payment.ClaimInput{TxID: ptr.Of("123456789")}, errIs: payment.ErrTxIDTooLong},
		{name: "comment too long", in: payment.ClaimInput{Comment: ptr.Of("12345678901")}, errIs: payment.ErrCommentTooLong},
		{name: "too many attachments", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{png("a"), png("b"), png("c")}}, errIs: payment.ErrTooManyAttachments},
		{name: "empty attachment", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{png("")}}, errIs: payment.ErrAttachmentEmpty},
		{name: "large attachment", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{png("12345")}}, errIs: payment.ErrAttachmentTooLarge},
		{name: "disallowed type", in: payment.ClaimInput{Attachments: []payment.AttachmentInput{
			{Filename: "x.exe", ContentType: "application/octet-stream", Data: []byte("x")},
		}}, errIs: payment.ErrAttachmentType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Normalize().Validate(limits)
			if tc.errIs == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, tc.errIs), "got %v", err)
		})
	}
}

func TestClaimInput_Normalize(t *testing.T) {
	in := payment.ClaimInput{TxID: ptr.Of("  tx-1 "), Comment: ptr.Of("   ")}.Normalize()
	require.NotNil(t, in.TxID)
	assert.Equal(t, "tx-1", *in.TxID)
	assert.Nil(t, in.Comment)
}

func TestValidateRejectReason(t *testing.T) {
	assert.NoError(t, payment.ValidateRejectReason("", limits))
	assert.NoError(t, payment.ValidateRejectReason("wrong", limits))
	assert.True(t, errs.Is(payment.ValidateRejectReason("wrong!", limits), payment.ErrRejectReasonTooLong))
}

func TestValidateDetails(t *testing.T) {
	assert.NoError(t, payment.ValidateDetails("IBAN 1", limits))
	assert.True(t, errs.Is(payment.ValidateDetails(" \t", limits), payment.ErrDetailsEmpty))
	assert.True(t, errs.Is(payment.ValidateDetails(strings.Repeat("x", 7), limits), payment.ErrDetailsTooLong))
}
