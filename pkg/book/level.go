package book

// LevelInfo is an aggregated view of every live order resting at a
// single price on a single side.
type LevelInfo struct {
	Price        Price
	AggregateQty Quantity
	OrderCount   int
}

// LevelInfoSnapshot is a best-first view of both sides of the book at a
// point in time. Bids are ordered highest price first, asks lowest
// price first.
type LevelInfoSnapshot struct {
	Bids []LevelInfo
	Asks []LevelInfo
}

// aggregateEntry is the level aggregate table's per-price bookkeeping
// (spec.md §4.3). It is kept incrementally in step with the side books
// under the three actions: Add (admission), Remove (cancel/full-fill),
// Match (partial fill).
type aggregateEntry struct {
	totalQty Quantity
	count    int
}

// aggregateTable maps Price to its live aggregate, one per side.
type aggregateTable map[Price]*aggregateEntry

func newAggregateTable() aggregateTable {
	return make(aggregateTable)
}

// add records a newly admitted resting order at price using its initial
// quantity (the "Add" action in spec.md §4.3's table).
func (t aggregateTable) add(price Price, initialQty Quantity) {
	e, ok := t[price]
	if !ok {
		e = &aggregateEntry{}
		t[price] = e
	}
	e.totalQty += initialQty
	e.count++
}

// match deducts a partial fill from price's aggregate without touching
// the order count (the "Match" action).
func (t aggregateTable) match(price Price, tradedQty Quantity) {
	e, ok := t[price]
	if !ok {
		return
	}
	e.totalQty -= tradedQty
}

// remove deducts an order's remaining quantity at removal time
// (cancellation or terminal fill) and erases the price entry once its
// count reaches zero (the "Remove" action).
func (t aggregateTable) remove(price Price, remainingAtRemoval Quantity) {
	e, ok := t[price]
	if !ok {
		return
	}
	e.totalQty -= remainingAtRemoval
	e.count--
	if e.count <= 0 {
		delete(t, price)
	}
}
