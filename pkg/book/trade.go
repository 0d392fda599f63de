package book

// TradeLeg is one side of a Trade: the identity of the order involved,
// the price it traded at (its own resting limit, never the
// counterparty's — spec.md §4.1), and the quantity crossed.
type TradeLeg struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade is an immutable record of one fill between a bid and an ask.
// The two legs are never collapsed into a single price: a crossing
// limit order keeps its own limit on its leg, and the resting
// counterparty keeps its own limit on the other, which is how
// price-improvement is captured transparently.
type Trade struct {
	Bid TradeLeg
	Ask TradeLeg
}
