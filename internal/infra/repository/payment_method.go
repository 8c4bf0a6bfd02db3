package repository

import (
	"context"

	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type PaymentMethodRepository struct {
	db db.DBTX
}

func NewPaymentMethodRepository(dbtx db.DBTX) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: dbtx}
}

func (r *PaymentMethodRepository) FindEnabled(ctx context.Context, merchantID string, methodType payment.MethodType) (*payment.Method, error) {
	var (
		m        payment.Method
		mt       string
		mode     string
		template pgtype.Text
	)
	err := r.db.QueryRow(ctx, `
		SELECT merchant_id, method_type, mode, encrypted_template, enabled
		FROM merchant_payment_methods
		WHERE merchant_id = $1 AND method_type = $2 AND enabled`, merchantID, string(methodType)).
		Scan(&m.MerchantID, &mt, &mode, &template, &m.Enabled)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Mark(infra.WrapRepoErr("payment method not found", err), payment.ErrMethodNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment method", err)
	}
	m.Type = payment.MethodType(mt)
	m.Mode = payment.Mode(mode)
	m.EncryptedTemplate = pgconv.StringPtrFromPgtype(template)
	return &m, nil
}

func (r *PaymentMethodRepository) FindOrderDetails(ctx context.Context, orderID string) (*payment.OrderDetails, error) {
	var d payment.OrderDetails
	err := r.db.QueryRow(ctx, `
		SELECT order_id, text, provided_by, updated_at
		FROM order_payment_details
		WHERE order_id = $1`, orderID).Scan(&d.OrderID, &d.Text, &d.ProvidedBy, &d.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find order payment details", err)
	}
	return &d, nil
}

func (r *PaymentMethodRepository) SaveOrderDetails(ctx context.Context, d payment.OrderDetails) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_payment_details (order_id, text, provided_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id) DO UPDATE
		SET text = EXCLUDED.text, provided_by = EXCLUDED.provided_by, updated_at = EXCLUDED.updated_at`,
		d.OrderID, d.Text, d.ProvidedBy, d.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save order payment details", err)
	}
	return nil
}
