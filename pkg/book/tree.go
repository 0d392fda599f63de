package book

import (
	"container/list"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// priceLevel holds the FIFO queue of live orders resting at one price.
// orders is a doubly-linked list so that an order's position (the
// list.Element handle stored on Order.elem) survives insertion and
// removal of its siblings, giving O(1) cancellation (spec.md §3, §9).
type priceLevel struct {
	price  Price
	orders *list.List // of *Order, head-to-tail == arrival order
}

func newPriceLevel(price Price) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// sideBook is one side (bid or ask) of the book: a balanced tree keyed
// by price giving O(log P) insert/erase and ordered best-first
// iteration, paired with a per-level FIFO queue.
//
// Bids are ordered descending (best = highest); asks ascending
// (best = lowest). Both are expressed as the same generic tree with a
// side-specific comparator, so Left() is always the best price.
type sideBook struct {
	side Side
	tree *rbt.Tree[Price, *priceLevel]
}

func newSideBook(side Side) *sideBook {
	var cmp func(a, b Price) int
	if side == Buy {
		// Bids: descending, so the tree's "smallest" (Left) is the
		// highest price.
		cmp = func(a, b Price) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		cmp = func(a, b Price) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	return &sideBook{side: side, tree: rbt.NewWith[Price, *priceLevel](cmp)}
}

// empty reports whether the side carries no price levels.
func (s *sideBook) empty() bool {
	return s.tree.Empty()
}

// best returns the best (head) price level, or nil if the side is empty.
func (s *sideBook) best() *priceLevel {
	node := s.tree.Left()
	if node == nil {
		return nil
	}
	return node.Value
}

// bestPrice returns the best price and true, or false if empty.
func (s *sideBook) bestPrice() (Price, bool) {
	node := s.tree.Left()
	if node == nil {
		return 0, false
	}
	return node.Key, true
}

// levelAt returns the price level at price, creating it if absent.
func (s *sideBook) levelAt(price Price) *priceLevel {
	level, found := s.tree.Get(price)
	if !found {
		level = newPriceLevel(price)
		s.tree.Put(price, level)
	}
	return level
}

// append adds order to the tail of its price level's FIFO queue,
// creating the level if needed, and records the stable handle on the
// order itself.
func (s *sideBook) append(order *Order) {
	level := s.levelAt(order.Price())
	order.elem = level.orders.PushBack(order)
}

// remove erases order from its price level in O(1) using its stored
// handle, and drops the level entirely once it empties.
func (s *sideBook) remove(order *Order) {
	level, found := s.tree.Get(order.Price())
	if !found || order.elem == nil {
		return
	}
	level.orders.Remove(order.elem)
	order.elem = nil
	if level.orders.Len() == 0 {
		s.tree.Remove(order.Price())
	}
}

// forEachLevel walks price levels in best-first order, invoking fn with
// each level until fn returns false or the side is exhausted.
func (s *sideBook) forEachLevel(fn func(level *priceLevel) bool) {
	it := s.tree.Iterator()
	for it.Next() {
		if !fn(it.Value()) {
			return
		}
	}
}
