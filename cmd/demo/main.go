// Command demo exercises limitbook end to end and prints a colorized
// trace of the resulting trades and level snapshot. It is illustrative
// only, mirroring cmd/examples/basic in the teacher repository — the
// engine's contract is the pkg/book API, not this program.
package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/erain9/limitbook/pkg/book"
	"github.com/erain9/limitbook/pkg/logging"
	"github.com/erain9/limitbook/pkg/telemetry"
)

func main() {
	logging.Setup(logging.DefaultConfig())

	b := book.NewBook(book.WithTelemetry(telemetry.NewRecorder()))
	defer b.Close()

	sell, err := book.NewOrder(1, book.Sell, book.GoodTillCancel, 100, 10)
	if err != nil {
		panic(err)
	}
	if trades := b.AddOrder(sell); len(trades) != 0 {
		panic("unexpected trades from a resting sell")
	}
	color.Green("resting sell: %s", sell)

	buy, err := book.NewOrder(2, book.Buy, book.GoodTillCancel, 100, 4)
	if err != nil {
		panic(err)
	}
	trades := b.AddOrder(buy)
	color.Cyan("submitted buy: %s", buy)

	for _, t := range trades {
		color.Yellow("trade: bid #%d x%d @ %d  <->  ask #%d x%d @ %d",
			t.Bid.OrderID, t.Bid.Quantity, t.Bid.Price,
			t.Ask.OrderID, t.Ask.Quantity, t.Ask.Price)
	}

	snap := b.GetLevelInfos()
	fmt.Println("\nbook snapshot:")
	for _, lvl := range snap.Bids {
		color.Blue("  BID  %6d  qty=%-6d orders=%d", lvl.Price, lvl.AggregateQty, lvl.OrderCount)
	}
	for _, lvl := range snap.Asks {
		color.Red("  ASK  %6d  qty=%-6d orders=%d", lvl.Price, lvl.AggregateQty, lvl.OrderCount)
	}

	stats := b.Stats()
	fmt.Printf("\nmatch-loop latency: n=%d mean=%.0fns p99=%dns\n", stats.Count, stats.Mean, stats.P99)
}
