//go:build unit || e2e

package builder

import (
	"time"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/ptr"
)

const (
	DefaultMerchantID = "m-1"
	DefaultBuyerID    = int64(1001)
	DefaultAdminID    = int64(9001)
	DefaultListingID  = "l-1"
	DefaultVariantID  = "v-1"
	DefaultOrderID    = "ord-1"
)

var DefaultNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func Buyer() user.Actor {
	return user.Actor{ID: DefaultBuyerID, Role: user.RoleBuyer}
}

func Admin() user.Actor {
	return user.Actor{ID: DefaultAdminID, Role: user.RoleAdmin, MerchantID: DefaultMerchantID}
}

// ==================================================
// Merchant
// ==================================================

type MerchantBuilder struct {
	m merchant.Merchant
}

func NewMerchantBuilder() *MerchantBuilder {
	chatID := int64(-100500)
	return &MerchantBuilder{m: merchant.Merchant{
		ID:           DefaultMerchantID,
		Name:         "Test Shop",
		ClaimWindow:  60 * time.Second,
		ReviewWindow: 10 * time.Minute,
		AdminChatID:  &chatID,
	}}
}

func (b *MerchantBuilder) With(mutate func(*merchant.Merchant)) *MerchantBuilder {
	mutate(&b.m)
	return b
}

func (b *MerchantBuilder) BuildDomain() merchant.Merchant {
	return b.m
}

// ==================================================
// Order
// ==================================================

type OrderBuilder struct {
	o     order.Order
	lines []order.Line
}

// NewOrderBuilder starts from a pending order with one line of two units at 10.00.
func NewOrderBuilder() *OrderBuilder {
	b := &OrderBuilder{o: order.Order{
		ID:         DefaultOrderID,
		MerchantID: DefaultMerchantID,
		BuyerID:    DefaultBuyerID,
		Currency:   "USD",
		Status:     order.StatusPending,
		CreatedAt:  DefaultNow,
		UpdatedAt:  DefaultNow,
	}}
	return b.WithLines(VariantLine(DefaultVariantID, 2, 1000))
}

func (b *OrderBuilder) WithStatus(s order.Status) *OrderBuilder {
	b.o.Status = s
	return b
}

func (b *OrderBuilder) WithMethod(m payment.MethodType) *OrderBuilder {
	b.o.PaymentMethod = &m
	return b
}

// WithLines replaces the lines and recomputes the order amount.
func (b *OrderBuilder) WithLines(lines ...order.Line) *OrderBuilder {
	b.lines = nil
	var total int64
	for _, l := range lines {
		l.OrderID = b.o.ID
		total += l.SubtotalMinor()
		b.lines = append(b.lines, l)
	}
	b.o.AmountMinor = total
	return b
}

func (b *OrderBuilder) With(mutate func(*order.Order)) *OrderBuilder {
	mutate(&b.o)
	for i := range b.lines {
		b.lines[i].OrderID = b.o.ID
	}
	return b
}

func (b *OrderBuilder) BuildDomain() (order.Order, []order.Line) {
	return b.o, append([]order.Line(nil), b.lines...)
}

func VariantLine(variantID string, qty int, price int64) order.Line {
	return order.Line{
		ListingID:  DefaultListingID,
		VariantID:  ptr.Of(variantID),
		Qty:        qty,
		PriceMinor: price,
		Currency:   "USD",
		CreatedAt:  DefaultNow,
	}
}

// ==================================================
// Cart and payment methods
// ==================================================

func NewCart(buyerID int64) cart.Cart {
	return cart.Cart{ID: "cart-1", BuyerID: buyerID, UpdatedAt: DefaultNow}
}

func CartItem(variantID string, qty int, price int64) cart.Item {
	return cart.Item{
		ListingID:  DefaultListingID,
		VariantID:  ptr.Of(variantID),
		MerchantID: DefaultMerchantID,
		Qty:        qty,
		PriceMinor: price,
		Currency:   "USD",
	}
}

func ManualMethod(t payment.MethodType) payment.Method {
	return payment.Method{
		MerchantID: DefaultMerchantID,
		Type:       t,
		Mode:       payment.ModeManualSend,
		Enabled:    true,
	}
}

func AutoMethod(t payment.MethodType, encryptedTemplate string) payment.Method {
	return payment.Method{
		MerchantID:        DefaultMerchantID,
		Type:              t,
		Mode:              payment.ModeAuto,
		EncryptedTemplate: &encryptedTemplate,
		Enabled:           true,
	}
}
