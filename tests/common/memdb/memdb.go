//go:build unit || e2e

// Package memdb is an in-memory UnitOfWork for use-case tests. Transactions are
// serialized and roll back every change when fn returns an error.
package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/ptr"
	"bot-for-order/internal/usecase/shared"

	"github.com/google/uuid"
)

type StockRow struct {
	ListingID string
	Stock     int
	Active    bool
}

type state struct {
	orders      map[string]order.Order
	lines       map[string][]order.Line
	history     []order.HistoryEntry
	claims      map[uuid.UUID]payment.Claim
	attachments []payment.Attachment
	carts       map[int64]cart.Cart
	cartItems   map[string][]cart.Item
	variants    map[string]StockRow
	listings    map[string]StockRow
	merchants   map[string]merchant.Merchant
	methods     map[string]payment.Method
	details     map[string]payment.OrderDetails
	outbox      []outbox.Message
}

func newState() *state {
	return &state{
		orders:    map[string]order.Order{},
		lines:     map[string][]order.Line{},
		claims:    map[uuid.UUID]payment.Claim{},
		carts:     map[int64]cart.Cart{},
		cartItems: map[string][]cart.Item{},
		variants:  map[string]StockRow{},
		listings:  map[string]StockRow{},
		merchants: map[string]merchant.Merchant{},
		methods:   map[string]payment.Method{},
		details:   map[string]payment.OrderDetails{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]order.Line(nil), v...)
	}
	c.history = append([]order.HistoryEntry(nil), s.history...)
	for k, v := range s.claims {
		c.claims[k] = v
	}
	c.attachments = append([]payment.Attachment(nil), s.attachments...)
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = append([]cart.Item(nil), v...)
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.merchants {
		c.merchants[k] = v
	}
	for k, v := range s.methods {
		c.methods[k] = v
	}
	for k, v := range s.details {
		c.details[k] = v
	}
	c.outbox = append([]outbox.Message(nil), s.outbox...)
	return c
}

type DB struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   *state
	fail map[string]error
}

var _ shared.UnitOfWork = (*DB)(nil)

func New() *DB {
	return &DB{st: newState(), fail: map[string]error{}}
}

func (d *DB) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.Lock()
	snapshot := d.st.clone()
	d.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			d.mu.Lock()
			d.st = snapshot
			d.mu.Unlock()
		}
	}()

	if err := fn(ctx, &tx{db: d}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (d *DB) Reads() shared.Tx {
	return &tx{db: d}
}

// FailOn makes the named repository call (e.g. "Orders.Update") return err.
func (d *DB) FailOn(call string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[call] = err
}

func (d *DB) injected(call string) error {
	return d.fail[call]
}

// ---- seeding and inspection ----

func (d *DB) PutMerchant(m merchant.Merchant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.merchants[m.ID] = m
}

func (d *DB) PutMethod(m payment.Method) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.methods[methodKey(m.MerchantID, m.Type)] = m
}

func (d *DB) PutListing(id string, stock int, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.listings[id] = StockRow{ListingID: id, Stock: stock, Active: active}
}

func (d *DB) PutVariant(id, listingID string, stock int, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.variants[id] = StockRow{ListingID: listingID, Stock: stock, Active: active}
}

func (d *DB) PutCart(c cart.Cart, items ...cart.Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.carts[c.BuyerID] = c
	d.st.cartItems[c.ID] = append([]cart.Item(nil), items...)
}

func (d *DB) PutOrder(o order.Order, lines ...order.Line) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.st.orders[o.ID] = o
	d.st.lines[o.ID] = append([]order.Line(nil), lines...)
}

func (d *DB) Order(id string) (order.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.st.orders[id]
	return o, ok
}

func (d *DB) OrderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.st.orders)
}

func (d *DB) CartItemCount(cartID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.st.cartItems[cartID])
}

func (d *DB) VariantStock(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.variants[id].Stock
}

func (d *DB) ListingStock(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.listings[id].Stock
}

// Claims returns every claim of the order ordered by creation time.
func (d *DB) Claims(orderID string) []payment.Claim {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []payment.Claim
	for _, c := range d.st.claims {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (d *DB) History(orderID string) []order.HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []order.HistoryEntry
	for _, h := range d.st.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

func (d *DB) OutboxTypes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.st.outbox))
	for _, m := range d.st.outbox {
		out = append(out, m.Type)
	}
	return out
}

func (d *DB) Details(orderID string) (payment.OrderDetails, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.st.details[orderID]
	return v, ok
}

func methodKey(merchantID string, t payment.MethodType) string {
	return merchantID + "|" + string(t)
}

// ---- repositories ----

type tx struct {
	db *DB
}

func (t *tx) Orders() shared.OrderRepository                 { return (*orders)(t) }
func (t *tx) OrderLines() shared.OrderLineRepository         { return (*orderLines)(t) }
func (t *tx) History() shared.HistoryRepository              { return (*history)(t) }
func (t *tx) Claims() shared.ClaimRepository                 { return (*claims)(t) }
func (t *tx) Attachments() shared.AttachmentRepository       { return (*attachments)(t) }
func (t *tx) Carts() shared.CartRepository                   { return (*carts)(t) }
func (t *tx) Catalog() shared.CatalogRepository              { return (*catalogRepo)(t) }
func (t *tx) Merchants() shared.MerchantRepository           { return (*merchants)(t) }
func (t *tx) PaymentMethods() shared.PaymentMethodRepository { return (*methods)(t) }
func (t *tx) Outbox() shared.OutboxRepository                { return (*outboxRepo)(t) }

func (t *tx) lock(call string) (*state, func(), error) {
	t.db.mu.Lock()
	if err := t.db.injected(call); err != nil {
		t.db.mu.Unlock()
		return nil, nil, err
	}
	return t.db.st, t.db.mu.Unlock, nil
}

type orders tx

func (r *orders) Create(_ context.Context, o *order.Order) error {
	st, unlock, err := (*tx)(r).lock("Orders.Create")
	if err != nil {
		return err
	}
	defer unlock()
	st.orders[o.ID] = *o
	return nil
}

func (r *orders) FindByID(_ context.Context, id string) (*order.Order, error) {
	st, unlock, err := (*tx)(r).lock("Orders.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	o, ok := st.orders[id]
	if !ok {
		return nil, errs.Wrapf(order.ErrOrderNotFound, "order %s", id)
	}
	return &o, nil
}

func (r *orders) Update(_ context.Context, o *order.Order, prev *order.Order) error {
	st, unlock, err := (*tx)(r).lock("Orders.Update")
	if err != nil {
		return err
	}
	defer unlock()
	cur, ok := st.orders[o.ID]
	if !ok || cur.Status != prev.Status || !ptr.Equal(cur.PaymentMethod, prev.PaymentMethod) {
		return errs.Wrapf(order.ErrOrderStatusChanged, "order %s changed since read in %s", o.ID, prev.Status)
	}
	st.orders[o.ID] = *o
	return nil
}

type orderLines tx

func (r *orderLines) CreateBatch(_ context.Context, lines []order.Line) error {
	st, unlock, err := (*tx)(r).lock("OrderLines.CreateBatch")
	if err != nil {
		return err
	}
	defer unlock()
	for _, l := range lines {
		st.lines[l.OrderID] = append(st.lines[l.OrderID], l)
	}
	return nil
}

func (r *orderLines) ListByOrder(_ context.Context, orderID string) ([]order.Line, error) {
	st, unlock, err := (*tx)(r).lock("OrderLines.ListByOrder")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]order.Line(nil), st.lines[orderID]...), nil
}

type history tx

func (r *history) Append(_ context.Context, entry order.HistoryEntry) error {
	st, unlock, err := (*tx)(r).lock("History.Append")
	if err != nil {
		return err
	}
	defer unlock()
	st.history = append(st.history, entry)
	return nil
}

type claims tx

func (r *claims) TryInsert(_ context.Context, c *payment.Claim) (bool, error) {
	st, unlock, err := (*tx)(r).lock("Claims.TryInsert")
	if err != nil {
		return false, err
	}
	defer unlock()
	for _, existing := range st.claims {
		if existing.OrderID == c.OrderID && existing.Status == payment.ClaimSubmitted {
			return false, nil
		}
	}
	st.claims[c.ID] = *c
	return true, nil
}

func (r *claims) FindSubmitted(_ context.Context, orderID string) (*payment.Claim, error) {
	st, unlock, err := (*tx)(r).lock("Claims.FindSubmitted")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, c := range st.claims {
		if c.OrderID == orderID && c.Status == payment.ClaimSubmitted {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *claims) UpdateDecision(_ context.Context, c *payment.Claim) error {
	st, unlock, err := (*tx)(r).lock("Claims.UpdateDecision")
	if err != nil {
		return err
	}
	defer unlock()
	cur, ok := st.claims[c.ID]
	if !ok || cur.Status != payment.ClaimSubmitted {
		return errs.Wrapf(payment.ErrClaimNotFound, "claim %s", c.ID)
	}
	st.claims[c.ID] = *c
	return nil
}

type attachments tx

func (r *attachments) Create(_ context.Context, a payment.Attachment) error {
	st, unlock, err := (*tx)(r).lock("Attachments.Create")
	if err != nil {
		return err
	}
	defer unlock()
	st.attachments = append(st.attachments, a)
	return nil
}

func (r *attachments) ListByClaim(_ context.Context, claimID uuid.UUID) ([]payment.Attachment, error) {
	st, unlock, err := (*tx)(r).lock("Attachments.ListByClaim")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []payment.Attachment
	for _, a := range st.attachments {
		if a.ClaimID == claimID {
			out = append(out, a)
		}
	}
	return out, nil
}

type carts tx

func (r *carts) FindByBuyer(_ context.Context, buyerID int64) (*cart.Cart, error) {
	st, unlock, err := (*tx)(r).lock("Carts.FindByBuyer")
	if err != nil {
		return nil, err
	}
	defer unlock()
	c, ok := st.carts[buyerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *carts) ListItems(_ context.Context, cartID string) ([]cart.Item, error) {
	st, unlock, err := (*tx)(r).lock("Carts.ListItems")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]cart.Item(nil), st.cartItems[cartID]...), nil
}

func (r *carts) ClearItems(_ context.Context, cartID string) error {
	st, unlock, err := (*tx)(r).lock("Carts.ClearItems")
	if err != nil {
		return err
	}
	defer unlock()
	delete(st.cartItems, cartID)
	return nil
}

type catalogRepo tx

func (r *catalogRepo) StockSnapshot(_ context.Context, items []hold.Item) (map[string]catalog.Stock, error) {
	st, unlock, err := (*tx)(r).lock("Catalog.StockSnapshot")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make(map[string]catalog.Stock, len(items))
	for _, it := range items {
		if it.IsVariant() {
			v, ok := st.variants[*it.VariantID]
			if !ok {
				continue
			}
			l := st.listings[v.ListingID]
			out[it.Key] = catalog.Stock{Key: it.Key, Available: v.Stock, Active: v.Active && l.Active}
			continue
		}
		l, ok := st.listings[it.ListingID]
		if !ok {
			continue
		}
		out[it.Key] = catalog.Stock{Key: it.Key, Available: l.Stock, Active: l.Active}
	}
	return out, nil
}

func (r *catalogRepo) DecrementStockBatch(_ context.Context, items []hold.Item) error {
	st, unlock, err := (*tx)(r).lock("Catalog.DecrementStockBatch")
	if err != nil {
		return err
	}
	defer unlock()
	for _, it := range items {
		table, id := st.listings, it.ListingID
		if it.IsVariant() {
			table, id = st.variants, *it.VariantID
		}
		row, ok := table[id]
		if !ok || !row.Active || row.Stock < it.Qty {
			return errs.Wrapf(catalog.ErrStockMismatch, "item %s qty %d", it.Key, it.Qty)
		}
		row.Stock -= it.Qty
		table[id] = row
	}
	return nil
}

type merchants tx

func (r *merchants) FindByID(_ context.Context, id string) (*merchant.Merchant, error) {
	st, unlock, err := (*tx)(r).lock("Merchants.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	m, ok := st.merchants[id]
	if !ok {
		return nil, errs.Wrapf(merchant.ErrMerchantNotFound, "merchant %s", id)
	}
	return &m, nil
}

type methods tx

func (r *methods) FindEnabled(_ context.Context, merchantID string, methodType payment.MethodType) (*payment.Method, error) {
	st, unlock, err := (*tx)(r).lock("PaymentMethods.FindEnabled")
	if err != nil {
		return nil, err
	}
	defer unlock()
	m, ok := st.methods[methodKey(merchantID, methodType)]
	if !ok || !m.Enabled {
		return nil, errs.Wrapf(payment.ErrMethodNotFound, "merchant %s method %s", merchantID, methodType)
	}
	return &m, nil
}

func (r *methods) FindOrderDetails(_ context.Context, orderID string) (*payment.OrderDetails, error) {
	st, unlock, err := (*tx)(r).lock("PaymentMethods.FindOrderDetails")
	if err != nil {
		return nil, err
	}
	defer unlock()
	d, ok := st.details[orderID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *methods) SaveOrderDetails(_ context.Context, details payment.OrderDetails) error {
	st, unlock, err := (*tx)(r).lock("PaymentMethods.SaveOrderDetails")
	if err != nil {
		return err
	}
	defer unlock()
	st.details[details.OrderID] = details
	return nil
}

// outboxRepo only records inserts; delivery is covered by worker tests.
type outboxRepo tx

func (r *outboxRepo) Insert(_ context.Context, msg *outbox.Message) error {
	st, unlock, err := (*tx)(r).lock("Outbox.Insert")
	if err != nil {
		return err
	}
	defer unlock()
	st.outbox = append(st.outbox, *msg)
	return nil
}

func (r *outboxRepo) FetchDueBatch(context.Context, int, time.Time, time.Time) ([]*outbox.Message, error) {
	return nil, nil
}

func (r *outboxRepo) MarkDone(context.Context, uuid.UUID, int, time.Time) (bool, error) {
	return false, nil
}

func (r *outboxRepo) Reschedule(context.Context, uuid.UUID, int, time.Time, string) (bool, error) {
	return false, nil
}

func (r *outboxRepo) MarkFailed(context.Context, uuid.UUID, int, string, time.Time) (bool, error) {
	return false, nil
}

func (r *outboxRepo) CountBacklog(context.Context, time.Time) (int64, error) {
	return 0, nil
}
