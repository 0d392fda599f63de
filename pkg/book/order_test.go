package book

import (
	"errors"
	"testing"
)

func TestNewOrderRejectsZeroQuantity(t *testing.T) {
	_, err := NewOrder(1, Buy, GoodTillCancel, 100, 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("NewOrder with zero quantity: got err %v, want ErrInvalidQuantity", err)
	}
}

func TestNewOrderFields(t *testing.T) {
	o, err := NewOrder(7, Sell, FillOrKill, 150, 20)
	if err != nil {
		t.Fatalf("NewOrder: unexpected error %v", err)
	}
	if o.ID() != 7 {
		t.Errorf("ID() = %v, want 7", o.ID())
	}
	if o.Side() != Sell {
		t.Errorf("Side() = %v, want Sell", o.Side())
	}
	if o.Type() != FillOrKill {
		t.Errorf("Type() = %v, want FillOrKill", o.Type())
	}
	if o.Price() != 150 {
		t.Errorf("Price() = %v, want 150", o.Price())
	}
	if o.InitialQuantity() != 20 || o.RemainingQuantity() != 20 {
		t.Errorf("expected initial == remaining == 20, got %v/%v", o.InitialQuantity(), o.RemainingQuantity())
	}
	if o.IsFilled() {
		t.Error("freshly constructed order should not be filled")
	}
}

func TestOrderFill(t *testing.T) {
	o, _ := NewOrder(1, Buy, GoodTillCancel, 100, 10)
	o.Fill(4)
	if o.RemainingQuantity() != 6 {
		t.Errorf("RemainingQuantity() = %v, want 6", o.RemainingQuantity())
	}
	if o.FilledQuantity() != 4 {
		t.Errorf("FilledQuantity() = %v, want 4", o.FilledQuantity())
	}
	o.Fill(6)
	if !o.IsFilled() {
		t.Error("order should be filled after consuming all remaining quantity")
	}
}

func TestOrderFillExceedingRemainingPanics(t *testing.T) {
	o, _ := NewOrder(1, Buy, GoodTillCancel, 100, 5)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Fill(qty > remaining) should panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrFillExceedsRemaining) {
			t.Errorf("panic value = %v, want an error wrapping ErrFillExceedsRemaining", r)
		}
	}()

	o.Fill(6)
}

func TestConvertMarketToLimit(t *testing.T) {
	o, _ := NewOrder(1, Buy, Market, 0, 5)
	o.ConvertMarketToLimit(105)

	if o.Type() != GoodTillCancel {
		t.Errorf("Type() after conversion = %v, want GoodTillCancel", o.Type())
	}
	if o.Price() != 105 {
		t.Errorf("Price() after conversion = %v, want 105", o.Price())
	}
}

func TestConvertMarketToLimitPanicsOnNonMarketOrder(t *testing.T) {
	o, _ := NewOrder(1, Buy, GoodTillCancel, 100, 5)

	defer func() {
		if recover() == nil {
			t.Fatal("ConvertMarketToLimit on a non-Market order should panic")
		}
	}()

	o.ConvertMarketToLimit(105)
}
