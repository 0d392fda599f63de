package book

import (
	"context"
	"sync"
	"time"

	"github.com/erain9/limitbook/pkg/config"
	"github.com/erain9/limitbook/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// noCopy, embedded by value, makes `go vet -copylocks` flag any
// accidental copy of Book. Grounded on the teacher's habit of embedding
// sync.RWMutex directly into backend types (pkg/backend/memory) to get
// the same "don't copy me" enforcement for free.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Book is a single-instrument, in-memory limit order book. Construct
// one with NewBook and release it with Close. A Book must not be copied
// after construction (see noCopy) — it owns a background goroutine.
type Book struct {
	_ noCopy

	mu   sync.Mutex
	bids *sideBook
	asks *sideBook

	bidAgg aggregateTable
	askAgg aggregateTable

	index map[OrderID]*Order

	telemetry *telemetry.Recorder
	pruner    *pruner
}

// Option configures a Book at construction time.
type Option func(*bookOptions)

type bookOptions struct {
	pruner    config.PrunerConfig
	telemetry *telemetry.Recorder
	now       func() time.Time
}

// WithPrunerConfig overrides the default 16:00-local Good-For-Day
// session-close schedule.
func WithPrunerConfig(cfg config.PrunerConfig) Option {
	return func(o *bookOptions) { o.pruner = cfg }
}

// WithTelemetry attaches a telemetry.Recorder. Passing nil (the
// default) leaves the book uninstrumented.
func WithTelemetry(rec *telemetry.Recorder) Option {
	return func(o *bookOptions) { o.telemetry = rec }
}

// withClock overrides the pruner's notion of "now", for tests only.
func withClock(now func() time.Time) Option {
	return func(o *bookOptions) { o.now = now }
}

// NewBook constructs an empty order book and starts its Good-For-Day
// pruner goroutine. Callers must call Close when done.
func NewBook(opts ...Option) *Book {
	cfg := bookOptions{pruner: config.DefaultPrunerConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Book{
		bids:      newSideBook(Buy),
		asks:      newSideBook(Sell),
		bidAgg:    newAggregateTable(),
		askAgg:    newAggregateTable(),
		index:     make(map[OrderID]*Order),
		telemetry: cfg.telemetry,
	}
	b.pruner = newPruner(b, cfg.pruner, cfg.now)
	go b.pruner.run()
	return b
}

// Close stops and joins the pruner goroutine. It is idempotent and
// bounded: a second or later call blocks briefly on the same shutdown
// handshake and returns without panicking or waiting for a future
// session close, per spec.md §5.
func (b *Book) Close() {
	b.pruner.stop()
}

func (b *Book) sideBookFor(side Side) *sideBook {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) aggregateFor(side Side) aggregateTable {
	if side == Buy {
		return b.bidAgg
	}
	return b.askAgg
}

// AddOrder admits order per the type-specific policy in spec.md §4.4,
// runs the matching loop, and returns every trade produced. Returns nil
// (no trades, no state change) if order is rejected: duplicate id, an
// unmatchable FillAndKill, an unfillable FillOrKill, or a Market order
// with no opposite-side liquidity.
func (b *Book) AddOrder(order *Order) []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOrderLocked(order)
}

// addOrderLocked implements the admission-and-match path for a caller
// already holding b.mu. Shared by AddOrder and ModifyOrder so that
// modify's internal cancel+re-add runs as one uninterrupted critical
// section, matching spec.md §5's requirement that modify_order never
// exposes torn state to another caller.
func (b *Book) addOrderLocked(order *Order) []Trade {
	ctx, span := b.telemetry.StartOp(context.Background(), telemetry.SpanAddOrder,
		attribute.Int64(telemetry.AttributeOrderID, int64(order.id)),
		attribute.String(telemetry.AttributeOrderSide, order.side.String()),
		attribute.String(telemetry.AttributeOrderType, order.orderType.String()),
	)
	defer span.End()

	if _, exists := b.index[order.id]; exists {
		return nil
	}

	switch order.orderType {
	case Market:
		if !b.admitMarket(order) {
			return nil
		}
	case FillAndKill:
		if !b.canMatchLocked(order.side, order.price) {
			return nil
		}
		b.admitResting(order)
	case FillOrKill:
		if !b.canFullyFillLocked(order.side, order.price, order.remainingQty) {
			return nil
		}
		b.admitResting(order)
	case GoodTillCancel, GoodForDay:
		b.admitResting(order)
	default:
		return nil
	}

	start := time.Now()
	trades := b.runMatchingLoop()
	b.telemetry.RecordMatchLatency(time.Since(start).Nanoseconds())

	for _, t := range trades {
		b.telemetry.RecordMatch(ctx, order.orderType.String(), int64(t.Bid.Quantity))
	}
	span.SetAttributes(attribute.Int(telemetry.AttributeTradeCount, len(trades)))

	return trades
}

// admitMarket rewrites a Market order to the worst opposite price and
// reclassifies it GoodTillCancel (spec.md §4.4), rejecting it outright
// if the opposite side is empty. Assumes b.mu held.
func (b *Book) admitMarket(order *Order) bool {
	opposite := b.sideBookFor(order.side.Opposite())
	if opposite.empty() {
		return false
	}

	order.ConvertMarketToLimit(worstPrice(opposite))
	b.admitResting(order)
	return true
}

// worstPrice returns the least favorable resting price on s by walking
// its ordered tree best-first to the far end.
func worstPrice(s *sideBook) Price {
	var worst Price
	s.forEachLevel(func(level *priceLevel) bool {
		worst = level.price
		return true // keep going; the last level visited is worst
	})
	return worst
}

// admitResting places order into its side book and id index and emits
// an Add to the aggregate table. Assumes b.mu held.
func (b *Book) admitResting(order *Order) {
	b.sideBookFor(order.side).append(order)
	b.index[order.id] = order
	b.aggregateFor(order.side).add(order.price, order.initialQty)
}

// CancelOrder removes the order identified by id, if it exists. No-op
// for an unknown id.
func (b *Book) CancelOrder(id OrderID) {
	_, span := b.telemetry.StartOp(context.Background(), telemetry.SpanCancelOrder,
		attribute.Int64(telemetry.AttributeOrderID, int64(id)))
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelLocked(id)
}

// cancelLocked implements the cancel path for a caller already holding
// b.mu; used by CancelOrder and by the pruner's batch cancel.
func (b *Book) cancelLocked(id OrderID) {
	order, ok := b.index[id]
	if !ok {
		return
	}
	remaining := order.remainingQty
	b.sideBookFor(order.side).remove(order)
	delete(b.index, id)
	b.aggregateFor(order.side).remove(order.price, remaining)
}

// ModifyRequest carries the fields of an in-place order modification.
// The order's type is preserved from the existing order; the request
// only supplies the mutable fields (spec.md §4.5).
type ModifyRequest struct {
	ID       OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

// ModifyOrder cancels the existing order (if present) and re-admits it
// with the fields from m, preserving its original type but losing its
// former time priority. No-op returning nil if id is unknown. The
// re-admission goes through full admission and so can itself be
// rejected (spec.md §4.5).
func (b *Book) ModifyOrder(m ModifyRequest) []Trade {
	_, span := b.telemetry.StartOp(context.Background(), telemetry.SpanModifyOrder,
		attribute.Int64(telemetry.AttributeOrderID, int64(m.ID)))
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.index[m.ID]
	if !ok {
		return nil
	}
	existingType := existing.orderType

	replacement, err := NewOrder(m.ID, m.Side, existingType, m.Price, m.Quantity)
	if err != nil {
		return nil
	}

	b.cancelLocked(m.ID)
	return b.addOrderLocked(replacement)
}

// Size returns the number of live orders in the book.
func (b *Book) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.index)
}

// GetLevelInfos returns a best-first aggregated snapshot of both sides.
func (b *Book) GetLevelInfos() LevelInfoSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return LevelInfoSnapshot{
		Bids: b.snapshotSide(b.bids, b.bidAgg),
		Asks: b.snapshotSide(b.asks, b.askAgg),
	}
}

func (b *Book) snapshotSide(s *sideBook, agg aggregateTable) []LevelInfo {
	var out []LevelInfo
	s.forEachLevel(func(level *priceLevel) bool {
		entry, ok := agg[level.price]
		var info LevelInfo
		if ok {
			info = LevelInfo{Price: level.price, AggregateQty: entry.totalQty, OrderCount: entry.count}
		} else {
			info = LevelInfo{Price: level.price}
		}
		out = append(out, info)
		return true
	})
	return out
}

// CanMatch reports whether an incoming order on side at price could
// trade immediately against the opposite side (spec.md §4.2).
func (b *Book) CanMatch(side Side, price Price) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canMatchLocked(side, price)
}

func (b *Book) canMatchLocked(side Side, price Price) bool {
	opposite := b.sideBookFor(side.Opposite())
	best, ok := opposite.bestPrice()
	if !ok {
		return false
	}
	if side == Buy {
		return price >= best
	}
	return price <= best
}

// CanFullyFill reports whether qty could be filled immediately at price
// without crossing beyond it, by walking the opposite side's price
// levels in best-first order and summing each level's aggregate
// quantity (spec.md §4.2).
func (b *Book) CanFullyFill(side Side, price Price, qty Quantity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canFullyFillLocked(side, price, qty)
}

func (b *Book) canFullyFillLocked(side Side, price Price, qty Quantity) bool {
	opposite := b.sideBookFor(side.Opposite())
	oppositeAgg := b.aggregateFor(side.Opposite())

	var accumulated Quantity
	fulfilled := false
	opposite.forEachLevel(func(level *priceLevel) bool {
		acceptable := (side == Buy && level.price <= price) || (side == Sell && level.price >= price)
		if !acceptable {
			return false
		}
		if entry, ok := oppositeAgg[level.price]; ok {
			accumulated += entry.totalQty
		}
		if accumulated >= qty {
			fulfilled = true
			return false
		}
		return true
	})
	return fulfilled
}

// runMatchingLoop implements spec.md §4.1. Assumes b.mu held.
func (b *Book) runMatchingLoop() []Trade {
	var trades []Trade

	for {
		if b.bids.empty() || b.asks.empty() {
			break
		}
		bidPrice, _ := b.bids.bestPrice()
		askPrice, _ := b.asks.bestPrice()
		if bidPrice < askPrice {
			break
		}

		bidLevel := b.bids.best()
		askLevel := b.asks.best()

		for bidLevel.orders.Len() > 0 && askLevel.orders.Len() > 0 {
			bidOrder := bidLevel.orders.Front().Value.(*Order)
			askOrder := askLevel.orders.Front().Value.(*Order)

			qty := bidOrder.remainingQty
			if askOrder.remainingQty < qty {
				qty = askOrder.remainingQty
			}

			bidOrder.Fill(qty)
			askOrder.Fill(qty)

			b.bidAgg.match(bidOrder.price, qty)
			b.askAgg.match(askOrder.price, qty)

			trades = append(trades, Trade{
				Bid: TradeLeg{OrderID: bidOrder.id, Price: bidOrder.price, Quantity: qty},
				Ask: TradeLeg{OrderID: askOrder.id, Price: askOrder.price, Quantity: qty},
			})

			if bidOrder.IsFilled() {
				b.removeFilled(bidOrder)
			}
			if askOrder.IsFilled() {
				b.removeFilled(askOrder)
			}

			if bidLevel.orders.Len() == 0 || askLevel.orders.Len() == 0 {
				break
			}
		}

		if bidLevel.orders.Len() == 0 {
			b.bids.tree.Remove(bidLevel.price)
		}
		if askLevel.orders.Len() == 0 {
			b.asks.tree.Remove(askLevel.price)
		}
	}

	b.cancelDanglingFillAndKill(b.bids)
	b.cancelDanglingFillAndKill(b.asks)

	return trades
}

// removeFilled tears down a fully-filled order: pull it out of its
// price level's FIFO list, drop it from the id index, and emit a
// Remove to its side's aggregate (using its now-zero remaining
// quantity, which telescopes correctly against the Add/Match actions
// already applied — spec.md §4.3).
func (b *Book) removeFilled(order *Order) {
	level, found := b.sideBookFor(order.side).tree.Get(order.price)
	if found && order.elem != nil {
		level.orders.Remove(order.elem)
		order.elem = nil
	}
	delete(b.index, order.id)
	b.aggregateFor(order.side).remove(order.price, 0)
}

// cancelDanglingFillAndKill enforces invariant I4: after the matching
// loop settles, if the head of side is a FillAndKill that did not fully
// fill, it is cancelled rather than left resting.
func (b *Book) cancelDanglingFillAndKill(s *sideBook) {
	level := s.best()
	if level == nil || level.orders.Len() == 0 {
		return
	}
	head := level.orders.Front().Value.(*Order)
	if head.orderType == FillAndKill {
		b.cancelLocked(head.id)
	}
}

// cancelAllGoodForDay is invoked by the pruner. It collects every live
// GoodForDay id under one lock acquisition, releases the lock, then
// cancels them all under a second acquisition — cancellation tolerates
// unknown ids, so nothing needs to be re-validated between the two
// phases (spec.md §4.6, §9).
func (b *Book) cancelAllGoodForDay() {
	b.mu.Lock()
	var ids []OrderID
	for id, order := range b.index {
		if order.orderType == GoodForDay {
			ids = append(ids, id)
		}
	}
	b.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.cancelLocked(id)
	}
}

// Stats returns a snapshot of the match-loop latency distribution
// collected by the attached telemetry.Recorder (additive to spec.md's
// operation surface; the zero value if telemetry was not configured).
func (b *Book) Stats() telemetry.LatencySnapshot {
	return b.telemetry.Snapshot()
}
