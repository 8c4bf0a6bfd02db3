package redisstore

import (
	"context"
	"time"

	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// All hold keys share one hash slot so scripts stay valid on a cluster.
// The scripts also touch item and owner keys rebuilt from stored JSON or the
// expiry set; those are not passed as KEYS, so they must keep the {hold} tag
// to land on the node that owns the declared keys.
const (
	holdOwnerPrefix = "{hold}:owner:"
	holdItemPrefix  = "{hold}:item:"
	holdExpiryKey   = "{hold}:exp"

	sweepBatch = 100
)

// KEYS: owner, expiry zset, item hashes...
// ARGV: owner id, now ms, expires-at ms, items json, mode, then qty/capacity per item.
// Returns 1 when the owner holds the items afterwards.
var acquireHoldScript = redis.NewScript(`
local owner = ARGV[1]
local now = tonumber(ARGV[2])
local expAt = tonumber(ARGV[3])
local mode = ARGV[5]
local n = #KEYS - 2

local cur = redis.call('GET', KEYS[1])
local score = redis.call('ZSCORE', KEYS[2], owner)
if cur and score and tonumber(score) > now then
  if mode == 'extend' then
    redis.call('ZADD', KEYS[2], expAt, owner)
    return 1
  end
  if cur == ARGV[4] then
    return 1
  end
  return 0
end
if cur then
  for _, it in ipairs(cjson.decode(cur)) do
    redis.call('HDEL', '` + holdItemPrefix + `' .. it.key, owner)
  end
end

for i = 1, n do
  local holders = redis.call('HKEYS', KEYS[i + 2])
  for _, h in ipairs(holders) do
    local s = redis.call('ZSCORE', KEYS[2], h)
    if (not s) or tonumber(s) <= now then
      redis.call('HDEL', KEYS[i + 2], h)
    end
  end
end

for i = 1, n do
  local qty = tonumber(ARGV[4 + (i - 1) * 2 + 2])
  local cap = tonumber(ARGV[4 + (i - 1) * 2 + 3])
  local vals = redis.call('HGETALL', KEYS[i + 2])
  local held = 0
  for j = 1, #vals, 2 do
    if vals[j] ~= owner then
      held = held + tonumber(vals[j + 1])
    end
  end
  if held + qty > cap then
    return 0
  end
end

for i = 1, n do
  redis.call('HSET', KEYS[i + 2], owner, ARGV[4 + (i - 1) * 2 + 2])
end
redis.call('SET', KEYS[1], ARGV[4])
redis.call('ZADD', KEYS[2], expAt, owner)
return 1
`)

// KEYS: owner, expiry zset, item hashes from the request. ARGV: owner id.
var releaseHoldScript = redis.NewScript(`
local owner = ARGV[1]
local cur = redis.call('GET', KEYS[1])
if cur then
  for _, it in ipairs(cjson.decode(cur)) do
    redis.call('HDEL', '` + holdItemPrefix + `' .. it.key, owner)
  end
end
for i = 3, #KEYS do
  redis.call('HDEL', KEYS[i], owner)
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], owner)
return 1
`)

// KEYS: expiry zset. ARGV: now ms, batch size.
var sweepHoldScript = redis.NewScript(`
local owners = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, owner in ipairs(owners) do
  local ok = '` + holdOwnerPrefix + `' .. owner
  local cur = redis.call('GET', ok)
  if cur then
    for _, it in ipairs(cjson.decode(cur)) do
      redis.call('HDEL', '` + holdItemPrefix + `' .. it.key, owner)
    end
    redis.call('DEL', ok)
  end
  redis.call('ZREM', KEYS[1], owner)
end
return #owners
`)

type storedItem struct {
	Key string `json:"key"`
	Qty int    `json:"qty"`
}

// HoldLedger runs every operation as a single Lua script. Capacity is read
// from the catalog first and passed in as arguments.
type HoldLedger struct {
	client redis.UniversalClient
	stock  shared.StockReader
	clock  clock.Clock
}

func NewHoldLedger(client redis.UniversalClient, stock shared.StockReader, clk clock.Clock) *HoldLedger {
	return &HoldLedger{client: client, stock: stock, clock: clk}
}

func (h *HoldLedger) TryAcquire(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) (bool, error) {
	return h.place(ctx, "acquire", ownerID, reqs, ttl)
}

func (h *HoldLedger) Extend(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) error {
	ok, err := h.place(ctx, "extend", ownerID, reqs, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Wrapf(hold.ErrHoldConflict, "owner %s lapsed and cannot be re-held", ownerID)
	}
	return nil
}

func (h *HoldLedger) place(ctx context.Context, mode, ownerID string, reqs []hold.Request, ttl time.Duration) (bool, error) {
	items, err := hold.Group(reqs)
	if err != nil {
		return false, err
	}
	snapshot, err := h.stock.StockSnapshot(ctx, items)
	if err != nil {
		return false, err
	}
	capacity := catalog.Capacity(snapshot)

	stored := make([]storedItem, len(items))
	for i, it := range items {
		stored[i] = storedItem{Key: it.Key, Qty: it.Qty}
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return false, err
	}

	now := h.clock.Now()
	keys := append([]string{holdOwnerPrefix + ownerID, holdExpiryKey}, itemKeys(items)...)
	args := []any{ownerID, now.UnixMilli(), now.Add(hold.ClampTTL(ttl)).UnixMilli(), string(raw), mode}
	for _, it := range items {
		args = append(args, it.Qty, capacity[it.Key])
	}

	n, err := acquireHoldScript.Run(ctx, h.client, keys, args...).Int()
	if err != nil {
		return false, storeErr(err, "failed to place hold")
	}
	return n == 1, nil
}

func (h *HoldLedger) Release(ctx context.Context, ownerID string, reqs []hold.Request) error {
	items, err := hold.Group(reqs)
	if err != nil {
		return err
	}
	keys := append([]string{holdOwnerPrefix + ownerID, holdExpiryKey}, itemKeys(items)...)
	if err := releaseHoldScript.Run(ctx, h.client, keys, ownerID).Err(); err != nil {
		return storeErr(err, "failed to release hold")
	}
	return nil
}

func (h *HoldLedger) ReleaseExpired(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := sweepHoldScript.Run(ctx, h.client, []string{holdExpiryKey}, h.clock.Now().UnixMilli(), sweepBatch).Int()
		if err != nil {
			return total, storeErr(err, "failed to sweep expired holds")
		}
		total += n
		if n < sweepBatch {
			return total, nil
		}
	}
}

func itemKeys(items []hold.Item) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = holdItemPrefix + it.Key
	}
	return keys
}
