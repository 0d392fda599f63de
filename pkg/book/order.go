package book

import (
	"container/list"
	"fmt"
)

// Order is a mutable record of one resting or in-flight order. It is
// created by the caller, admitted by Book.AddOrder, and mutated only by
// the matching loop and by ConvertMarketToLimit during admission.
type Order struct {
	id           OrderID
	side         Side
	orderType    OrderType
	price        Price
	initialQty   Quantity
	remainingQty Quantity

	// elem is the stable handle into the price level's FIFO list this
	// order occupies while resting. It is nil for an order that is not
	// currently resting in a side book.
	elem *list.Element
}

// NewOrder constructs an order ready for admission. price is ignored for
// Market orders (admission rewrites it per spec.md §4.4) but callers may
// pass any value, including zero.
func NewOrder(id OrderID, side Side, orderType OrderType, price Price, quantity Quantity) (*Order, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		id:           id,
		side:         side,
		orderType:    orderType,
		price:        price,
		initialQty:   quantity,
		remainingQty: quantity,
	}, nil
}

// ID returns the order's identity.
func (o *Order) ID() OrderID { return o.id }

// Side returns the order's side.
func (o *Order) Side() Side { return o.side }

// Type returns the order's current lifetime policy. For a Market order
// this is Market until admission converts it to GoodTillCancel.
func (o *Order) Type() OrderType { return o.orderType }

// Price returns the order's limit price. Undefined (placeholder) for an
// unconverted Market order.
func (o *Order) Price() Price { return o.price }

// InitialQuantity returns the quantity requested at admission time.
func (o *Order) InitialQuantity() Quantity { return o.initialQty }

// RemainingQuantity returns the quantity not yet filled.
func (o *Order) RemainingQuantity() Quantity { return o.remainingQty }

// FilledQuantity returns initialQty - remainingQty.
func (o *Order) FilledQuantity() Quantity { return o.initialQty - o.remainingQty }

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool { return o.remainingQty == 0 }

// Fill reduces the order's remaining quantity by qty. It panics with
// ErrFillExceedsRemaining if qty exceeds what remains: the matching loop
// must never construct such a fill, so this is a fatal invariant
// violation rather than a recoverable error (spec.md §7).
func (o *Order) Fill(qty Quantity) {
	if qty > o.remainingQty {
		panic(fmt.Errorf("%w: order %d has %d remaining, asked to fill %d",
			ErrFillExceedsRemaining, o.id, o.remainingQty, qty))
	}
	o.remainingQty -= qty
}

// ConvertMarketToLimit rewrites a Market order's price to worstOppositePrice
// and reclassifies it as GoodTillCancel, guaranteeing it crosses every
// resting opposite order it meets and does not itself rest beyond them
// (spec.md §4.4). Panics if called on a non-Market order.
func (o *Order) ConvertMarketToLimit(worstOppositePrice Price) {
	if o.orderType != Market {
		panic(fmt.Sprintf("book: ConvertMarketToLimit called on non-market order %d", o.id))
	}
	o.price = worstOppositePrice
	o.orderType = GoodTillCancel
}

// String implements fmt.Stringer for debugging and log output.
func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%d side=%s type=%s price=%d remaining=%d/%d}",
		o.id, o.side, o.orderType, o.price, o.remainingQty, o.initialQty)
}
